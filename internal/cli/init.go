// Package cli holds the start-up steps shared by the compras commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"compras/internal/config"
	"compras/internal/insights"
	"compras/internal/log"
	"compras/internal/storage"
)

// SetupLogger installs the process logger at the level named by level,
// falling back to info for unknown names.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and exits
// the process when it is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err,
			"error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InsightSettings merges the configured currency and locale with the
// optional overrides file.
func InsightSettings(logger *log.Logger, cfg *config.Config) insights.Settings {
	settings := insights.DefaultSettings()
	settings.Currency = cfg.CurrencySymbol
	settings.Locale = cfg.ResolvedLocale()
	if cfg.InsightsFile == "" {
		return settings
	}
	loaded, err := insights.LoadSettings(cfg.InsightsFile, settings)
	if err != nil {
		logger.Error("Failed to load insight settings", log.FieldError, err, "path", cfg.InsightsFile)
		os.Exit(1)
	}
	logger.Info("Insight settings loaded", "path", cfg.InsightsFile)
	return loaded
}

// InitStore opens the dataset store at dsn, exiting on failure.
func InitStore(logger *log.Logger, dsn string) *storage.Store {
	store, err := storage.NewStore(dsn)
	if err != nil {
		logger.Error("Failed to initialize dataset store", log.FieldError, err, "dsn", dsn)
		os.Exit(1)
	}
	logger.Info("Dataset store opened", "schema_version", store.SchemaVersion())
	return store
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run with at most timeout to finish. done closes once
// shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
