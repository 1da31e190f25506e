package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/email"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/mongo"
	"github.com/drfrankproulx-cmd/OProom/pkg/logger"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging/redis"
)

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Format: cfg.Format,
	})
}

// OpenStore connects the configured backend. Mongo indexes are ensured on open.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *zerolog.Logger) (*repository.Store, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("Using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.NewClient(connectCtx, mongo.Config{
		URI:            cfg.URI,
		Database:       cfg.Name,
		MaxPoolSize:    cfg.MaxPoolSize,
		MinPoolSize:    cfg.MinPoolSize,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Name)
	if err := mongo.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	log.Info().Str("database", cfg.Name).Msg("Connected to MongoDB")
	return mongo.NewStore(client, db), nil
}

// OpenBroker returns a Redis broker when enabled and a no-op broker otherwise.
func OpenBroker(ctx context.Context, cfg config.RedisConfig, log *zerolog.Logger) (messaging.Broker, error) {
	if !cfg.Enabled {
		return messaging.NopBroker{}, nil
	}
	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return broker, nil
}

// NewEmail returns the SMTP mailer, or a disabled one without credentials.
func NewEmail(cfg *config.Config, log *zerolog.Logger) email.Service {
	svc := email.NewService(email.Config{
		Host:           cfg.SMTP.Host,
		Port:           cfg.SMTP.Port,
		Username:       cfg.SMTP.Username,
		Password:       cfg.SMTP.Password,
		From:           cfg.SMTP.From,
		InvitesEnabled: cfg.Calendar.SyncEnabled,
	}, log)
	if !svc.Enabled() {
		log.Warn().Msg("SMTP credentials not configured; email delivery disabled")
	}
	return svc
}
