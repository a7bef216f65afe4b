package main

import (
	"context"
	"errors"
	"os"
	"time"

	"balancebooks/internal/cli"
	applog "balancebooks/internal/log"
	"balancebooks/internal/sheets"
	gsheet "balancebooks/internal/sheets/google"
	"balancebooks/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateWorkerConfig(logger)

	logger.Info("Starting ledger-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Events == nil {
		logger.Error("ledger-worker requires AMQP_URL and a reachable broker")
		_ = res.Cleanup()
		os.Exit(1)
	}

	// Google Sheets export is optional
	var exporter sheets.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			_ = res.Cleanup()
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewLedgerWorker(res.Store, exporter, cfg.GoogleExportTimeout)

	ctx, wait := cli.OnShutdown(logger, 30*time.Second, func(context.Context) {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	// Catch up on anything closed while the worker was down
	if err := w.StartupExport(ctx, time.Now()); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	go func() {
		err := res.Events.Consume(ctx, w.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			cli.Fatal(logger, "Event consumption failed", "error", err)
		}
	}()

	wait()
}
