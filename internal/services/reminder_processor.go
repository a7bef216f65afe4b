package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"balancebooks/internal/amqp"
	"balancebooks/internal/core"
	"balancebooks/internal/finance"
	"balancebooks/internal/ledger"
)

// ReminderProcessor publishes bill.due events for active bills coming due
// within the reminder window.
type ReminderProcessor struct {
	store  ledger.SnapshotReader
	events EventPublisher
	window int
	now    func() time.Time

	mu       sync.Mutex
	notified map[string]core.Date
}

// NewReminderProcessor creates a processor. A window below zero falls back
// to finance.DefaultUpcomingWindow.
func NewReminderProcessor(store ledger.SnapshotReader, events EventPublisher, window int) *ReminderProcessor {
	if window < 0 {
		window = finance.DefaultUpcomingWindow
	}
	return &ReminderProcessor{
		store:    store,
		events:   events,
		window:   window,
		now:      time.Now,
		notified: make(map[string]core.Date),
	}
}

// ProcessUpcoming publishes one reminder per bill and due date. A bill that
// was already announced for the same due date is skipped on later runs.
func (p *ReminderProcessor) ProcessUpcoming(ctx context.Context) (int, error) {
	if p.store == nil || p.events == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger: %w", err)
	}

	today := core.DateOf(p.now().UTC())
	upcoming := finance.UpcomingBills(snap.RecurringBills, today, p.window)

	slog.InfoContext(ctx, "Processing bill reminders",
		"upcoming", len(upcoming),
		"window_days", p.window,
		"processing_date", today.String())

	p.mu.Lock()
	defer p.mu.Unlock()

	published := 0
	for _, u := range upcoming {
		if last, ok := p.notified[u.ID]; ok && last.Equal(u.DueDate.Time) {
			continue
		}

		ev, err := amqp.NewBillDueEvent(u.RecurringBill, u.DueDate, u.DaysUntil, snap.Version)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build bill.due event",
				"bill_id", u.ID,
				"error", err)
			continue
		}
		if err := p.events.Publish(ctx, ev); err != nil {
			// Stop here; the remaining bills are retried on the next run.
			return published, fmt.Errorf("publish reminder for %s: %w", u.ID, err)
		}

		p.notified[u.ID] = u.DueDate
		published++
		slog.InfoContext(ctx, "Published bill reminder",
			"bill_id", u.ID,
			"name", u.Name,
			"due_date", u.DueDate.String(),
			"days_until", u.DaysUntil)
	}

	slog.InfoContext(ctx, "Bill reminder processing complete",
		"published", published,
		"total_checked", len(upcoming))

	return published, nil
}
