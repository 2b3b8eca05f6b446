package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"opsboard/internal/amqp"
	"opsboard/internal/automation"
	"opsboard/internal/backend"
	"opsboard/internal/boards"
	"opsboard/internal/cache"
	"opsboard/internal/cli"
	"opsboard/internal/finance"
	"opsboard/internal/finance/exports"
	apphttp "opsboard/internal/http"
	"opsboard/internal/log"
	"opsboard/internal/schema"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx := context.Background()

	validator, err := schema.NewValidator()
	if err != nil {
		logger.Error("Failed to compile record schemas", log.FieldError, err)
		os.Exit(1)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger, validator).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	notifiers := automation.Notifiers{automation.NewLogNotifier(logger)}
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Notifications are best effort; the API still serves without a broker.
			logger.Warn("AMQP unavailable, notifications will only be logged", log.FieldError, err)
		} else {
			notifiers = append(notifiers, amqpClient)
		}
	}

	source, err := exports.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize finance exports", log.FieldError, err, "source", cfg.ExportsSource)
		os.Exit(1)
	}
	cached := exports.NewCachedSource(source, cfg.ExportsCacheTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register(cached.Cache())
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:              be.Store,
		Boards:             boards.NewEngine(be.Views, logger),
		Automation:         automation.NewService(be.Store, notifiers, logger),
		Finance:            finance.NewService(cached, logger),
		Ready:              be.Ready,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		requests, limits := srv.Metrics()
		logger.Info("HTTP totals",
			"requests", requests.TotalRequests,
			"server_errors", requests.ServerErrors,
			"rate_limited", limits.TotalHits)
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting opsboard server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"view_store", cfg.ViewStore,
		"exports_source", cfg.ExportsSource,
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
