package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"balancebooks/internal/cache"
	"balancebooks/internal/cli"
	apphttp "balancebooks/internal/http"
	applog "balancebooks/internal/log"
	"balancebooks/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)

	var events services.EventPublisher
	if res.Events != nil {
		events = res.Events
	} else {
		logger.Info("AMQP disabled - month.closed events will not be published")
	}

	analytics := services.NewAnalyticsService(res.Store, cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(analytics.Caches()...)
	caches.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(apphttp.Config{
		Port:           cfg.Port,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
	}, apphttp.Deps{
		Ledger:    services.NewLedgerService(res.Store, events, logger),
		Analytics: analytics,
		Backup:    services.NewBackupService(res.Store),
		Logger:    logger,
	})

	_, wait := cli.OnShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting balancebooks server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", "error", err, "port", cfg.Port)
	}

	wait()
	logger.Info("Server stopped gracefully")
}
