package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drfrankproulx-cmd/OProom/internal/app"
	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/handler/health"
	promHandler "github.com/drfrankproulx-cmd/OProom/internal/handler/prometheus"
	"github.com/drfrankproulx-cmd/OProom/internal/service/patient"
	"github.com/drfrankproulx-cmd/OProom/internal/worker"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
	pkgworker "github.com/drfrankproulx-cmd/OProom/pkg/worker"
)

// WorkerSettings holds settings that only the worker process reads.
type WorkerSettings struct {
	ConfigPath    string        `envconfig:"CONFIG_PATH"`
	HealthPort    int           `envconfig:"HEALTH_PORT" default:"8081"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"30s"`
	RunOnStart    bool          `envconfig:"RUN_ON_START" default:"true"`
	WatchEvents   bool          `envconfig:"WATCH_EVENTS" default:"true"`
}

func setupHealthCheck(port int, ping health.Pinger, reg *prometheus.Registry, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	metricsRoute := promHandler.New(reg).Handler()
	health.NewHandler(ping, metricsRoute).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", metricsRoute)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

// watchLifecycle logs lifecycle events other processes publish.
func watchLifecycle(ctx context.Context, broker messaging.Broker, logger *zerolog.Logger) {
	msgs, err := broker.Subscribe(ctx, messaging.ChannelPatientLifecycle)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to subscribe to lifecycle events")
		return
	}
	for raw := range msgs {
		var msg messaging.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn().Err(err).Msg("Dropping malformed lifecycle event")
			continue
		}
		logger.Info().Str("type", msg.Type).Time("occurred_at", msg.OccurredAt).Msg("Lifecycle event")
	}
}

func main() {
	var settings WorkerSettings
	if err := envconfig.Process("worker", &settings); err != nil {
		log.Fatal().Err(err).Msg("Failed to read worker settings")
	}

	cfg, err := config.LoadConfig(settings.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := app.NewLogger(cfg.Logging)
	hostname, _ := os.Hostname()
	appLogger = appLogger.WithFields(map[string]interface{}{"worker_id": fmt.Sprintf("worker-%s-%d", hostname, os.Getpid())})
	logger := appLogger.Zerolog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if store.Close != nil {
			_ = store.Close(context.Background())
		}
	}()

	broker, err := app.OpenBroker(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(cfg.Metrics.Prefix+"_worker", reg)

	patients := patient.NewService(store, nil, nil, broker, m, logger, patient.Config{
		AutoArchiveDelayHours: cfg.Archive.AutoArchiveDelayHours,
		EnforceTransitions:    cfg.Lifecycle.EnforceTransitions,
	})

	sweeper := worker.NewArchiveSweepWorker(patients, cfg.Archive.AutoArchiveDelayHours, logger)
	processor, err := pkgworker.NewProcessor(sweeper.Run, pkgworker.ProcessorConfig{
		Name:          "auto-archive",
		PollInterval:  cfg.Archive.SweepInterval,
		RetryAttempts: settings.RetryAttempts,
		RetryDelay:    settings.RetryDelay,
		RunOnStart:    settings.RunOnStart,
	}, appLogger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create auto-archive worker")
	}

	healthSrv := setupHealthCheck(settings.HealthPort, health.Pinger(store.Ping), reg, logger)

	if settings.WatchEvents && cfg.Redis.Enabled {
		go watchLifecycle(ctx, broker, logger)
	}

	processor.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)
	logger.Info().Msg("Worker stopped")
}
