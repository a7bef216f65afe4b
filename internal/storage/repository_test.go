package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleTx(id string, day int, amount string, paid bool) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2025, 1, day),
		Description: "tx " + id,
		Amount:      decimal.RequireFromString(amount),
		Category:    core.CategoryGroceries,
		Paid:        paid,
	}
}

func TestSQLiteRepository_EmptySnapshot(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.Balances)
	assert.True(t, snap.SavingsGoal.IsZero())
	assert.Equal(t, int64(0), snap.Version)
}

func TestSQLiteRepository_TransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddTransactions(ctx, sampleTx("a", 3, "-42.10", false), sampleTx("b", 5, "1500", true)))

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, "a", snap.Transactions[0].ID)
	assert.Equal(t, core.NewDate(2025, 1, 3), snap.Transactions[0].Date)
	assert.True(t, snap.Transactions[0].Amount.Equal(decimal.RequireFromString("-42.10")))
	assert.Equal(t, core.CategoryGroceries, snap.Transactions[0].Category)
	assert.True(t, snap.Transactions[1].Paid)
	assert.Equal(t, int64(1), snap.Version)

	updated := snap.Transactions[0]
	updated.Description = "renamed"
	require.NoError(t, repo.UpdateTransaction(ctx, updated))

	n, err := repo.SetPaid(ctx, []string{"a", "b"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.DeleteTransaction(ctx, "b"))
	snap, err = repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "renamed", snap.Transactions[0].Description)
	assert.True(t, snap.Transactions[0].Paid)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "missing"), core.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateDebt(ctx, core.Debt{ID: "missing"}), core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteRecurringBill(ctx, "missing"), core.ErrNotFound)

	v, err := repo.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v, "failed writes must not bump the version")
}

func TestSQLiteRepository_SettingsAndCollections(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	bill := core.RecurringBill{ID: "rent", Name: "Rent", Amount: decimal.NewFromInt(1200), Category: core.CategoryHousing, Frequency: core.Monthly, DueDay: 1, Active: true, AutoPay: true}
	debt := core.Debt{ID: "card", Name: "Visa", Balance: decimal.NewFromInt(3000), InterestRate: decimal.RequireFromString("24.99"), MinPayment: decimal.NewFromInt(90), Type: core.DebtCreditCard}
	require.NoError(t, repo.AddRecurringBill(ctx, bill))
	require.NoError(t, repo.AddDebt(ctx, debt))
	require.NoError(t, repo.SetBudgetGoals(ctx, map[core.CategoryID]decimal.Decimal{core.CategoryDining: decimal.NewFromInt(200)}))
	require.NoError(t, repo.SetSavingsGoal(ctx, decimal.NewFromInt(500)))

	p := core.Period{Year: 2025, Month: 0}
	require.NoError(t, repo.SetBalanceOverride(ctx, p, core.BalanceOverride{Beginning: decimal.NewNullDecimal(decimal.NewFromInt(1000))}))

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.RecurringBills, 1)
	got := snap.RecurringBills[0]
	assert.Equal(t, "Rent", got.Name)
	assert.Equal(t, core.Monthly, got.Frequency)
	assert.Equal(t, 1, got.DueDay)
	assert.True(t, got.Active && got.AutoPay)
	assert.True(t, got.Amount.Equal(bill.Amount))
	require.Len(t, snap.Debts, 1)
	assert.True(t, snap.Debts[0].InterestRate.Equal(debt.InterestRate))
	assert.True(t, snap.BudgetGoals[core.CategoryDining].Equal(decimal.NewFromInt(200)))
	assert.True(t, snap.SavingsGoal.Equal(decimal.NewFromInt(500)))
	o := snap.Balances["2025-00"]
	assert.True(t, o.Beginning.Valid)
	assert.False(t, o.Ending.Valid)

	require.NoError(t, repo.SetBalanceOverride(ctx, p, core.BalanceOverride{}))
	snap, err = repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotContains(t, snap.Balances, "2025-00")
}

func TestSQLiteRepository_ApplyMonthClose(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.AddTransactions(ctx, sampleTx("unpaid", 31, "-80", false)))
	version, err := repo.Version(ctx)
	require.NoError(t, err)

	plan := core.MonthClosePlan{
		BaseVersion:   version,
		Period:        core.Period{Year: 2025, Month: 0},
		Next:          core.Period{Year: 2025, Month: 1},
		EndingBalance: decimal.NewFromInt(920),
		Moves:         []core.TransactionMove{{ID: "unpaid", From: core.NewDate(2025, 1, 31), To: core.NewDate(2025, 2, 28)}},
		Materialized:  []core.Transaction{sampleTx("rent-feb", 1, "-1200", true)},
	}
	plan.Materialized[0].Date = core.NewDate(2025, 2, 1)

	require.NoError(t, repo.ApplyMonthClose(ctx, plan))

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, core.NewDate(2025, 2, 28), snap.Transactions[0].Date)
	assert.True(t, snap.Balances["2025-00"].Ending.Decimal.Equal(decimal.NewFromInt(920)))
	assert.True(t, snap.Balances["2025-01"].Beginning.Decimal.Equal(decimal.NewFromInt(920)))
}

func TestSQLiteRepository_ApplyMonthCloseRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.AddTransactions(ctx, sampleTx("a", 10, "-5", false)))
	before, err := repo.Snapshot(ctx)
	require.NoError(t, err)

	plan := core.MonthClosePlan{
		BaseVersion:   before.Version,
		Period:        core.Period{Year: 2025, Month: 0},
		Next:          core.Period{Year: 2025, Month: 1},
		EndingBalance: decimal.NewFromInt(1),
		Moves: []core.TransactionMove{
			{ID: "a", To: core.NewDate(2025, 2, 10)},
			{ID: "ghost", To: core.NewDate(2025, 2, 1)},
		},
	}
	err = repo.ApplyMonthClose(ctx, plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMonthCloseFailed))
	assert.True(t, errors.Is(err, core.ErrNotFound))

	after, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSQLiteRepository_ApplyMonthCloseRejectsStalePlan(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.AddTransactions(ctx, sampleTx("pay", 2, "1000", true)))
	planned, err := repo.Snapshot(ctx)
	require.NoError(t, err)

	plan := core.MonthClosePlan{
		BaseVersion:   planned.Version,
		Period:        core.Period{Year: 2025, Month: 0},
		Next:          core.Period{Year: 2025, Month: 1},
		EndingBalance: decimal.NewFromInt(1000),
		Moves:         []core.TransactionMove{},
	}
	require.NoError(t, repo.AddTransactions(ctx, sampleTx("late-bill", 20, "-400", false)))
	before, err := repo.Snapshot(ctx)
	require.NoError(t, err)

	err = repo.ApplyMonthClose(ctx, plan)
	assert.ErrorIs(t, err, core.ErrMonthCloseFailed)
	assert.ErrorIs(t, err, core.ErrLedgerChanged)

	after, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotContains(t, after.Balances, "2025-01")
}

func TestSQLiteRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.AddTransactions(ctx, sampleTx("old", 1, "-1", false)))

	restored := core.Snapshot{
		Transactions: []core.Transaction{sampleTx("new", 2, "-2", true)},
		Balances:     map[string]core.BalanceOverride{"2025-00": {Ending: decimal.NewNullDecimal(decimal.NewFromInt(10))}},
		BudgetGoals:  map[core.CategoryID]decimal.Decimal{core.CategoryShopping: decimal.NewFromInt(50)},
		SavingsGoal:  decimal.NewFromInt(75),
	}
	require.NoError(t, repo.Replace(ctx, restored))

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "new", snap.Transactions[0].ID)
	assert.True(t, snap.SavingsGoal.Equal(decimal.NewFromInt(75)))
	assert.Len(t, snap.BudgetGoals, 1)
	assert.Len(t, snap.Balances, 1)
}
