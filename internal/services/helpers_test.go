package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"balancebooks/internal/amqp"
	"balancebooks/internal/core"
	"balancebooks/internal/ledger/memory"
	applog "balancebooks/internal/log"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) published() []*amqp.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.Event(nil), p.events...)
}

var errBrokerDown = errors.New("broker down")

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestLedger(t *testing.T, seed core.Snapshot) (*LedgerService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.New(seed)
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub, applog.Nop())
	svc.now = func() time.Time { return fixedNow }
	svc.newID = sequentialIDs()
	return svc, store, pub
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id, date, desc, amount string, cat core.CategoryID, paid bool) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Date: d, Description: desc, Amount: dec(amount), Category: cat, Paid: paid}
}

// januarySeed has one unpaid expense, two paid entries and two bills.
func januarySeed() core.Snapshot {
	return core.Snapshot{
		Transactions: []core.Transaction{
			tx("t1", "2025-01-02", "Salary", "3000", core.CategoryIncome, true),
			tx("t2", "2025-01-10", "Groceries", "-50", core.CategoryGroceries, true),
			tx("t3", "2025-01-31", "Electric", "-100", core.CategoryUtilities, false),
		},
		RecurringBills: []core.RecurringBill{
			{ID: "b1", Name: "Rent", Amount: dec("1200"), Category: core.CategoryHousing, Frequency: core.Monthly, DueDay: 1, Active: true},
			{ID: "b2", Name: "Gym", Amount: dec("30"), Category: core.CategoryHealthcare, Frequency: core.Monthly, DueDay: 20, Active: false},
		},
		Balances:    map[string]core.BalanceOverride{},
		BudgetGoals: map[core.CategoryID]decimal.Decimal{},
	}
}
