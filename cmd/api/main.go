package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/drfrankproulx-cmd/OProom/internal/app"
	"github.com/drfrankproulx-cmd/OProom/internal/calendar"
	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/worker"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
	pkgworker "github.com/drfrankproulx-cmd/OProom/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := app.NewLogger(cfg.Logging)
	logger := appLogger.Zerolog()
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if store.Close != nil {
			if err := store.Close(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to close store")
			}
		}
	}()

	// Initialize message broker
	broker, err := app.OpenBroker(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(app.Deps{
		Config:   cfg,
		Store:    store,
		Broker:   broker,
		Email:    app.NewEmail(cfg, logger),
		Calendar: calendar.NewBreakerProvider(calendar.Unavailable{}, logger),
		Metrics:  metrics.NewMetrics(cfg.Metrics.Prefix, reg),
		Gatherer: reg,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	// Start the auto-archive sweep
	if cfg.Archive.SweepEnabled {
		sweeper := worker.NewArchiveSweepWorker(a.Patients, cfg.Archive.AutoArchiveDelayHours, logger)
		processor, err := pkgworker.NewProcessor(sweeper.Run, pkgworker.ProcessorConfig{
			Name:          "auto-archive",
			PollInterval:  cfg.Archive.SweepInterval,
			RetryAttempts: 1,
			RunOnStart:    true,
		}, appLogger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create auto-archive worker")
		}
		go processor.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	a.Notifications.Wait()

	logger.Info().Msg("server exited properly")
}
