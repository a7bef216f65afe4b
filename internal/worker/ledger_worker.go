package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"balancebooks/internal/amqp"
	"balancebooks/internal/core"
	"balancebooks/internal/finance"
	"balancebooks/internal/ledger"
	"balancebooks/internal/sheets"
)

// LedgerWorker reacts to ledger events: a closed month is exported to the
// spreadsheet, a due bill is logged.
type LedgerWorker struct {
	store    ledger.SnapshotReader
	exporter sheets.Exporter
	timeout  time.Duration
}

// NewLedgerWorker creates a worker. exporter may be nil, in which case
// exports are skipped.
func NewLedgerWorker(store ledger.SnapshotReader, exporter sheets.Exporter, timeout time.Duration) *LedgerWorker {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &LedgerWorker{
		store:    store,
		exporter: exporter,
		timeout:  timeout,
	}
}

// HandleEvent dispatches one event from the ledger queue.
func (w *LedgerWorker) HandleEvent(ctx context.Context, ev *amqp.Event) error {
	switch ev.Type {
	case amqp.EventMonthClosed:
		var payload amqp.MonthClosedPayload
		if err := ev.Decode(&payload); err != nil {
			return err
		}
		return w.HandleMonthClosed(ctx, ev.Version, payload)
	case amqp.EventBillDue:
		var payload amqp.BillDuePayload
		if err := ev.Decode(&payload); err != nil {
			return err
		}
		w.HandleBillDue(ctx, payload)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring unknown event", "type", ev.Type)
		return nil
	}
}

// HandleMonthClosed exports the cycle ending at the closed period and that
// year's transactions. The current ledger is exported even when the event
// is older than the snapshot.
func (w *LedgerWorker) HandleMonthClosed(ctx context.Context, version int64, msg amqp.MonthClosedPayload) error {
	p, err := msg.ClosedPeriod()
	if err != nil {
		return fmt.Errorf("month.closed payload: %w", err)
	}

	slog.InfoContext(ctx, "Processing month.closed event",
		"period", p.Key(),
		"version", version,
		"ending_balance", msg.EndingBalance.StringFixed(2))

	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping spreadsheet export",
			"period", p.Key())
		return nil
	}
	return w.Export(ctx, p)
}

// Export writes the cycle ending at p and the transactions of p's year.
func (w *LedgerWorker) Export(ctx context.Context, p core.Period) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	snap, err := w.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	engine := finance.NewEngine(snap)

	ref, err := w.exporter.ExportCycle(ctx, p, engine.Cycle(p))
	if err != nil {
		return fmt.Errorf("export cycle: %w", err)
	}
	txRef, err := w.exporter.ExportTransactions(ctx, p.Year, snap.Transactions)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported ledger",
		"period", p.Key(),
		"version", snap.Version,
		"cycle_ref", ref,
		"transactions_ref", txRef)
	return nil
}

// HandleBillDue logs an upcoming bill.
func (w *LedgerWorker) HandleBillDue(ctx context.Context, msg amqp.BillDuePayload) {
	level := slog.LevelInfo
	if msg.DaysUntil == 0 && !msg.AutoPay {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "Bill due",
		"bill_id", msg.BillID,
		"name", msg.Name,
		"amount", msg.Amount.StringFixed(2),
		"category", msg.Category,
		"due_date", msg.DueDate,
		"days_until", msg.DaysUntil,
		"auto_pay", msg.AutoPay)
}

// StartupExport exports the current period once at worker startup, covering
// closes that happened while the worker was down.
func (w *LedgerWorker) StartupExport(ctx context.Context, now time.Time) error {
	if w.exporter == nil {
		slog.InfoContext(ctx, "No exporter configured, skipping startup export")
		return nil
	}
	p := core.PeriodOf(now)
	slog.InfoContext(ctx, "Running startup export", "period", p.Key())
	return w.Export(ctx, p)
}
