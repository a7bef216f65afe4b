// Package cli provides the start-up and shutdown steps shared by
// cmd/balancebooks, cmd/ledger-worker and cmd/recurring-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balancebooks/internal/backend"
	"balancebooks/internal/config"
	applog "balancebooks/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads .env when present. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. It runs before the config is loaded so
// config errors are logged in the right format.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// Fatal logs msg at error level and exits with status 1.
func Fatal(logger *applog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}

// LoadAndValidateConfig exits when the environment does not validate.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		Fatal(logger, "Configuration validation failed", "error", err)
	}
	return cfg
}

// LoadAndValidateWorkerConfig is LoadAndValidateConfig for the worker
// processes. It exits unless the ledger is shared through SQLite.
func LoadAndValidateWorkerConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		Fatal(logger, "Configuration validation failed", "error", err)
	}
	return cfg
}

// InitBackend opens the configured ledger store and, when AMQP_URL is set,
// the event client. Exits on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.Resources {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		Fatal(logger, "Invalid backend configuration", "error", err)
	}
	res, err := backend.Open(ctx, logger.Logger, bcfg)
	if err != nil {
		Fatal(logger, "Failed to open ledger backend", "error", err, "backend", cfg.DataBackend)
	}
	return res
}

// OnShutdown returns a context cancelled by SIGINT or SIGTERM. Once it is,
// cleanup runs with at most timeout to finish. The returned wait blocks
// until the signal has arrived and cleanup has returned or timed out.
func OnShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, func()) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received")

		deadline, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		finished := make(chan struct{})
		go func() {
			defer close(finished)
			if cleanup != nil {
				cleanup(deadline)
			}
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-deadline.Done():
			logger.Warn("Shutdown timed out", "timeout", timeout)
		}
	}()

	return ctx, func() { <-done }
}
