package main

import (
	"context"
	"os"
	"time"

	"balancebooks/internal/cli"
	applog "balancebooks/internal/log"
	"balancebooks/internal/scheduler"
	"balancebooks/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentScheduler)
	cfg := cli.LoadAndValidateWorkerConfig(logger)

	logger.Info("Starting recurring-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Events == nil {
		logger.Error("recurring-worker requires AMQP_URL and a reachable broker")
		_ = res.Cleanup()
		os.Exit(1)
	}

	processor := services.NewReminderProcessor(res.Store, res.Events, cfg.ReminderWindowDays)
	job := scheduler.NewBillReminderJob(processor, logger.Logger)

	sched := scheduler.New(logger.Logger)
	if err := sched.AddJob(cfg.ReminderSchedule, job); err != nil {
		logger.Error("Invalid reminder schedule", "error", err, "schedule", cfg.ReminderSchedule)
		_ = res.Cleanup()
		os.Exit(1)
	}

	ctx, wait := cli.OnShutdown(logger, 30*time.Second, func(context.Context) {
		sched.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Bill reminders configured",
		"schedule", cfg.ReminderSchedule,
		"window_days", cfg.ReminderWindowDays)

	// Run once on startup so a restart does not skip a day
	if err := sched.RunNow(ctx, job); err != nil {
		logger.Error("Initial reminder run failed", "error", err)
	}
	sched.Start(ctx)

	wait()
}
