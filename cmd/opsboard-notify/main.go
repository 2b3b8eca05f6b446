package main

import (
	"context"
	"errors"
	"os"
	"time"

	"opsboard/internal/amqp"
	"opsboard/internal/automation"
	"opsboard/internal/cli"
	"opsboard/internal/log"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume automation notifications")
		os.Exit(1)
	}

	logger.Info("Starting opsboard-notify", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(context.Context) {
		logger.Info("Stopping notification consumer")
	})

	sink := automation.NewLogNotifier(logger)
	handle := func(ctx context.Context, msg *amqp.NotificationMessage) error {
		return sink.Notify(ctx, msg.Notification())
	}

	if err := client.ConsumeNotifications(ctx, handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		_ = client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := client.Close(); err != nil {
		logger.Warn("AMQP close error", log.FieldError, err)
	}
	logger.Info("Notification consumer stopped")
}
