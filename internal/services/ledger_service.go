package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"balancebooks/internal/amqp"
	"balancebooks/internal/core"
	"balancebooks/internal/finance"
	"balancebooks/internal/ledger"
	applog "balancebooks/internal/log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventPublisher publishes ledger events. *amqp.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.Event) error
}

// LedgerService validates writes, drives the month close and publishes
// ledger events.
type LedgerService struct {
	store  ledger.Store
	events EventPublisher
	log    *applog.StructuredLogger
	now    func() time.Time
	newID  func() string
}

// NewLedgerService wires the service. events may be nil.
func NewLedgerService(store ledger.Store, events EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &LedgerService{
		store:  store,
		events: events,
		log:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentLedger)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	return s.store.Snapshot(ctx)
}

// Today is the current calendar day in UTC.
func (s *LedgerService) Today() core.Date {
	return core.DateOf(s.now().UTC())
}

func (s *LedgerService) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = s.newID()
	}
	t.Description = core.SanitizeText(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction: %w", err)
	}
	if err := s.store.AddTransactions(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.log.LogTransactionCreated(ctx, t.ID, t.Description, t.Amount.String(), string(t.Category))
	return t, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	t.Description = core.SanitizeText(t.Description)
	if err := requireID("transaction", t.ID); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return s.store.UpdateTransaction(ctx, t)
}

// requireID rejects a blank id before it reaches a store lookup.
func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s without id: %w", kind, core.ErrNotFound)
	}
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := requireID("transaction", id); err != nil {
		return err
	}
	return s.store.DeleteTransaction(ctx, id)
}

func (s *LedgerService) SetPaid(ctx context.Context, ids []string, paid bool) (int, error) {
	return s.store.SetPaid(ctx, ids, paid)
}

func (s *LedgerService) ClearTransactions(ctx context.Context) error {
	return s.store.ClearTransactions(ctx)
}

// AddRecurringBill stores a new bill. New bills start active.
func (s *LedgerService) AddRecurringBill(ctx context.Context, b core.RecurringBill) (core.RecurringBill, error) {
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.Frequency == "" {
		b.Frequency = core.Monthly
	}
	b.Name = core.SanitizeText(b.Name)
	b.Active = true
	if err := b.Validate(); err != nil {
		return core.RecurringBill{}, fmt.Errorf("recurring bill: %w", err)
	}
	if err := s.store.AddRecurringBill(ctx, b); err != nil {
		return core.RecurringBill{}, fmt.Errorf("save recurring bill: %w", err)
	}
	return b, nil
}

func (s *LedgerService) UpdateRecurringBill(ctx context.Context, b core.RecurringBill) error {
	b.Name = core.SanitizeText(b.Name)
	if err := b.Validate(); err != nil {
		return fmt.Errorf("recurring bill: %w", err)
	}
	return s.store.UpdateRecurringBill(ctx, b)
}

func (s *LedgerService) DeleteRecurringBill(ctx context.Context, id string) error {
	if err := requireID("recurring bill", id); err != nil {
		return err
	}
	return s.store.DeleteRecurringBill(ctx, id)
}

func (s *LedgerService) findBill(ctx context.Context, id string) (core.RecurringBill, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.RecurringBill{}, err
	}
	for _, b := range snap.RecurringBills {
		if b.ID == id {
			return b, nil
		}
	}
	return core.RecurringBill{}, fmt.Errorf("recurring bill %s: %w", id, core.ErrNotFound)
}

// ToggleBillActive flips a bill's active flag and returns the new state.
func (s *LedgerService) ToggleBillActive(ctx context.Context, id string) (bool, error) {
	b, err := s.findBill(ctx, id)
	if err != nil {
		return false, err
	}
	b.Active = !b.Active
	if err := s.store.UpdateRecurringBill(ctx, b); err != nil {
		return false, err
	}
	return b.Active, nil
}

// MaterializeBill records one occurrence of a bill dated today.
func (s *LedgerService) MaterializeBill(ctx context.Context, id string) (core.Transaction, error) {
	b, err := s.findBill(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t := b.Materialize(s.newID(), s.Today())
	if err := s.store.AddTransactions(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.log.LogTransactionCreated(ctx, t.ID, t.Description, t.Amount.String(), string(t.Category))
	return t, nil
}

func (s *LedgerService) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if d.ID == "" {
		d.ID = s.newID()
	}
	if d.Type == "" {
		d.Type = core.DebtOther
	}
	d.Name = core.SanitizeText(d.Name)
	if err := d.Validate(); err != nil {
		return core.Debt{}, fmt.Errorf("debt: %w", err)
	}
	if err := s.store.AddDebt(ctx, d); err != nil {
		return core.Debt{}, fmt.Errorf("save debt: %w", err)
	}
	return d, nil
}

func (s *LedgerService) UpdateDebt(ctx context.Context, d core.Debt) error {
	d.Name = core.SanitizeText(d.Name)
	if err := d.Validate(); err != nil {
		return fmt.Errorf("debt: %w", err)
	}
	return s.store.UpdateDebt(ctx, d)
}

func (s *LedgerService) DeleteDebt(ctx context.Context, id string) error {
	if err := requireID("debt", id); err != nil {
		return err
	}
	return s.store.DeleteDebt(ctx, id)
}

// SetBalanceOverride pins or clears the balances of p. An override with
// neither side set removes it.
func (s *LedgerService) SetBalanceOverride(ctx context.Context, p core.Period, o core.BalanceOverride) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.SetBalanceOverride(ctx, p, o)
}

// SetBudgetGoals replaces every goal. Zero goals are dropped.
func (s *LedgerService) SetBudgetGoals(ctx context.Context, goals map[core.CategoryID]decimal.Decimal) error {
	clean := make(map[core.CategoryID]decimal.Decimal, len(goals))
	for id, v := range goals {
		if !id.Valid() || id == core.CategoryIncome {
			return fmt.Errorf("%w: %s", core.ErrInvalidCategory, id)
		}
		if v.IsNegative() {
			return fmt.Errorf("budget for %s: %w", id, core.ErrInvalidAmount)
		}
		if v.IsPositive() {
			clean[id] = v
		}
	}
	return s.store.SetBudgetGoals(ctx, clean)
}

func (s *LedgerService) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	if goal.IsNegative() {
		return fmt.Errorf("savings goal: %w", core.ErrInvalidAmount)
	}
	return s.store.SetSavingsGoal(ctx, goal)
}

// PreviewMonthClose returns the plan CloseMonth would apply to p.
func (s *LedgerService) PreviewMonthClose(ctx context.Context, p core.Period) (core.MonthClosePlan, error) {
	if err := p.Validate(); err != nil {
		return core.MonthClosePlan{}, err
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.MonthClosePlan{}, err
	}
	return finance.NewEngine(snap).PlanMonthClose(p, s.newID), nil
}

// closeAttempts bounds how often CloseMonth re-plans after a concurrent write.
const closeAttempts = 3

// CloseMonth plans and applies the close of p, then publishes month.closed.
// When another write lands between planning and applying, the plan is
// rebuilt from the new snapshot. A publish failure is logged; the close
// itself stays committed.
func (s *LedgerService) CloseMonth(ctx context.Context, p core.Period) (core.MonthCloseReport, error) {
	var (
		plan core.MonthClosePlan
		err  error
	)
	for attempt := 1; ; attempt++ {
		plan, err = s.PreviewMonthClose(ctx, p)
		if err != nil {
			return core.MonthCloseReport{}, err
		}
		err = s.store.ApplyMonthClose(ctx, plan)
		if err == nil {
			break
		}
		if !errors.Is(err, core.ErrLedgerChanged) || attempt == closeAttempts {
			return core.MonthCloseReport{}, err
		}
		slog.DebugContext(ctx, "Ledger changed during month close, re-planning",
			"period", p.Key(), "attempt", attempt)
	}

	report := plan.Report()
	s.log.LogMonthClosed(ctx, p.Key(), report.EndingBalance.StringFixed(2), report.UnpaidMoved, report.RecurringCreated)
	s.publishMonthClosed(ctx, report)
	return report, nil
}

func (s *LedgerService) publishMonthClosed(ctx context.Context, report core.MonthCloseReport) {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping month.closed event")
		return
	}
	version, err := s.store.Version(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read ledger version", "error", err)
	}
	ev, err := amqp.NewMonthClosedEvent(report, version)
	if err == nil {
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish month.closed event",
			"period", report.Period.Key(),
			"error", err)
	}
}

// ImportTransactions stores candidates produced by the importer. Records
// without a date are dropped; the rest get fresh ids when missing.
func (s *LedgerService) ImportTransactions(ctx context.Context, candidates []core.Transaction) (int, int, error) {
	clean, skipped := core.SanitizeTransactions(candidates)
	for i := range clean {
		if clean[i].ID == "" {
			clean[i].ID = s.newID()
		}
	}
	if len(clean) == 0 {
		return 0, skipped, nil
	}
	if err := s.store.AddTransactions(ctx, clean...); err != nil {
		return 0, skipped, fmt.Errorf("save imported transactions: %w", err)
	}
	return len(clean), skipped, nil
}
