package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"compras/internal/amqp"
	"compras/internal/backend"
	"compras/internal/cache"
	"compras/internal/cli"
	apphttp "compras/internal/http"
	"compras/internal/ingest"
	"compras/internal/log"
	"compras/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	settings := cli.InsightSettings(logger, cfg)

	loader, err := ingest.NewLoader(ingest.LoaderConfig{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Watch:     cfg.WatchDataFile,
		Logger:    logger.WithComponent(log.ComponentIngest),
	})
	if err != nil {
		logger.Error("Failed to create loader", log.FieldError, err)
		os.Exit(1)
	}

	cacheManager := cache.NewManager()
	cacheManager.Register("ingest", loader.Cache())
	cacheManager.StartCleanup(5 * time.Minute)

	store := cli.InitStore(logger, cfg.SQLiteDBPath)

	// Alerts are optional; the dashboard runs without a broker.
	var (
		publisher  services.AlertPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, alerts disabled", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srcCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid data source configuration", log.FieldError, err)
		os.Exit(1)
	}
	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	source, err := backend.NewFactory(loader, logger.WithComponent(log.ComponentSource)).CreateSource(startCtx, srcCfg)
	if err != nil {
		cancelStart()
		logger.Error("Failed to create data source", log.FieldError, err, "type", srcCfg.Type)
		os.Exit(1)
	}

	svc := services.NewDashboardService(services.Options{
		Source:    source,
		Loader:    loader,
		Store:     store,
		Publisher: publisher,
		Settings:  settings,
		TopN:      cfg.TopN,
		Logger:    logger,
	})

	restored, err := svc.Restore(startCtx)
	if err != nil {
		logger.Warn("Could not restore previous dataset", log.FieldError, err)
	}
	if !restored {
		// A failed load still installs an empty dataset with a warning.
		if _, err := svc.Reload(startCtx); err != nil {
			logger.Warn("Initial load failed", log.FieldSource, source.Name(), log.FieldError, err)
		}
	}
	cancelStart()

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Deps{
		Store:          store,
		CacheStats:     loader.Cache().Stats,
		UploadMaxBytes: cfg.UploadMaxBytes,
		Logger:         logger.WithComponent(log.ComponentHTTP),
	})
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := loader.Close(); err != nil {
			logger.Warn("Loader close error", log.FieldError, err)
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := store.Close(); err != nil {
			logger.Warn("Store close error", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting compras server",
			"port", cfg.Port,
			log.FieldSource, source.Name(),
			"locale", settings.Locale,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
