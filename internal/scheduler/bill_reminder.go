package scheduler

import (
	"context"
	"log/slog"
)

// ReminderProcessor is satisfied by *services.ReminderProcessor.
type ReminderProcessor interface {
	ProcessUpcoming(ctx context.Context) (int, error)
}

// BillReminderJob publishes bill.due events for bills coming due.
type BillReminderJob struct {
	processor ReminderProcessor
	log       *slog.Logger
}

func NewBillReminderJob(processor ReminderProcessor, logger *slog.Logger) *BillReminderJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillReminderJob{
		processor: processor,
		log:       logger.With("job", "bill_reminder"),
	}
}

// Name returns the job name
func (j *BillReminderJob) Name() string {
	return "bill_reminder"
}

func (j *BillReminderJob) Run(ctx context.Context) error {
	n, err := j.processor.ProcessUpcoming(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.InfoContext(ctx, "Bill reminders sent", "count", n)
	}
	return nil
}
