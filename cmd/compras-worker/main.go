package main

import (
	"context"
	"errors"
	"os"
	"time"

	"compras/internal/amqp"
	"compras/internal/cli"
	"compras/internal/log"
	"compras/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}

	alerts := worker.NewAlertWorker(logger.WithComponent(log.ComponentWorker), cfg.CacheSize)

	// The consumer stops on context cancellation; the connection is
	// closed only after that.
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Alert worker started",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		log.FieldOperation, log.OpConsume)

	go func() {
		err := client.ConsumeAlerts(ctx, alerts.HandleAlert)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Alert consumer stopped", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	if err := client.Close(); err != nil {
		logger.Warn("AMQP close error", log.FieldError, err)
	}
	stats := alerts.Stats()
	logger.Info("Alert worker stopped",
		"handled", stats.Handled,
		"duplicates", stats.Duplicates,
		"dropped", stats.Dropped)
}
