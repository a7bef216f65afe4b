// Package ledger defines the ports of the ledger store: the read side hands
// out immutable snapshots, the write side covers CRUD and the atomic month
// close batch.
package ledger

import (
	"context"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Ports for ledger adapters.
type (
	SnapshotReader interface {
		// Snapshot returns a copy of every collection. Callers own the copy.
		Snapshot(ctx context.Context) (core.Snapshot, error)
		// Version returns the store's write counter.
		Version(ctx context.Context) (int64, error)
	}

	TransactionWriter interface {
		AddTransactions(ctx context.Context, txs ...core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		// SetPaid flips the paid flag of ids and returns how many changed.
		SetPaid(ctx context.Context, ids []string, paid bool) (int, error)
		ClearTransactions(ctx context.Context) error
	}

	RecurringWriter interface {
		AddRecurringBill(ctx context.Context, b core.RecurringBill) error
		UpdateRecurringBill(ctx context.Context, b core.RecurringBill) error
		DeleteRecurringBill(ctx context.Context, id string) error
	}

	DebtWriter interface {
		AddDebt(ctx context.Context, d core.Debt) error
		UpdateDebt(ctx context.Context, d core.Debt) error
		DeleteDebt(ctx context.Context, id string) error
	}

	SettingsWriter interface {
		SetBalanceOverride(ctx context.Context, p core.Period, o core.BalanceOverride) error
		SetBudgetGoals(ctx context.Context, goals map[core.CategoryID]decimal.Decimal) error
		SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error
	}

	// MonthCloser applies a month close plan all at once or not at all.
	MonthCloser interface {
		ApplyMonthClose(ctx context.Context, plan core.MonthClosePlan) error
	}

	// Restorer replaces every collection with s.
	Restorer interface {
		Replace(ctx context.Context, s core.Snapshot) error
	}

	// Store is the full ledger.
	Store interface {
		SnapshotReader
		TransactionWriter
		RecurringWriter
		DebtWriter
		SettingsWriter
		MonthCloser
		Restorer
		Close() error
	}
)
