package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const settingSavingsGoal = "savings_goal"

// SQLiteRepository is the durable ledger store. Every write runs in its own
// transaction and bumps the snapshot version.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := migrateLedger(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn in a transaction and bumps the version before committing.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	if err := fn(q); err != nil {
		return err
	}
	if err := q.BumpVersion(ctx); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot reads every collection inside one transaction.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var s core.Snapshot
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return s, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := r.queries.WithTx(tx)

	if s.Version, err = q.GetVersion(ctx); err != nil {
		return s, err
	}
	if s.Transactions, err = q.ListTransactions(ctx); err != nil {
		return s, fmt.Errorf("list transactions: %w", err)
	}
	if s.RecurringBills, err = q.ListRecurringBills(ctx); err != nil {
		return s, fmt.Errorf("list recurring bills: %w", err)
	}
	if s.Debts, err = q.ListDebts(ctx); err != nil {
		return s, fmt.Errorf("list debts: %w", err)
	}
	if s.Balances, err = q.ListBalanceOverrides(ctx); err != nil {
		return s, fmt.Errorf("list balance overrides: %w", err)
	}
	if s.BudgetGoals, err = q.ListBudgetGoals(ctx); err != nil {
		return s, fmt.Errorf("list budget goals: %w", err)
	}
	raw, err := q.GetSetting(ctx, settingSavingsGoal)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return s, fmt.Errorf("read savings goal: %w", err)
	}
	if raw != "" {
		if s.SavingsGoal, err = decimal.NewFromString(raw); err != nil {
			return s, fmt.Errorf("parse savings goal: %w", err)
		}
	}
	return s, nil
}

func (r *SQLiteRepository) Version(ctx context.Context) (int64, error) {
	return r.queries.GetVersion(ctx)
}

func (r *SQLiteRepository) AddTransactions(ctx context.Context, txs ...core.Transaction) error {
	err := r.inTx(ctx, func(q *Queries) error {
		for _, t := range txs {
			if err := q.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transactions saved to SQLite", "count", len(txs))
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpdateTransaction(ctx, t); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("transaction %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) SetPaid(ctx context.Context, ids []string, paid bool) (int, error) {
	changed := 0
	err := r.inTx(ctx, func(q *Queries) error {
		for _, id := range ids {
			ok, err := q.SetTransactionPaid(ctx, id, paid)
			if err != nil {
				return fmt.Errorf("set paid %s: %w", id, err)
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (r *SQLiteRepository) ClearTransactions(ctx context.Context) error {
	return r.inTx(ctx, func(q *Queries) error {
		return q.DeleteAllTransactions(ctx)
	})
}

func (r *SQLiteRepository) AddRecurringBill(ctx context.Context, b core.RecurringBill) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.InsertRecurringBill(ctx, b); err != nil {
			return fmt.Errorf("insert recurring bill %s: %w", b.ID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateRecurringBill(ctx context.Context, b core.RecurringBill) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpdateRecurringBill(ctx, b); err != nil {
			return fmt.Errorf("recurring bill %s: %w", b.ID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteRecurringBill(ctx context.Context, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteRecurringBill(ctx, id); err != nil {
			return fmt.Errorf("recurring bill %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) AddDebt(ctx context.Context, d core.Debt) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.InsertDebt(ctx, d); err != nil {
			return fmt.Errorf("insert debt %s: %w", d.ID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpdateDebt(ctx, d); err != nil {
			return fmt.Errorf("debt %s: %w", d.ID, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteDebt(ctx, id); err != nil {
			return fmt.Errorf("debt %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) SetBalanceOverride(ctx context.Context, p core.Period, o core.BalanceOverride) error {
	return r.inTx(ctx, func(q *Queries) error {
		if !o.Beginning.Valid && !o.Ending.Valid {
			return q.DeleteBalanceOverride(ctx, p.Key())
		}
		return q.UpsertBalanceOverride(ctx, p.Key(), o)
	})
}

func (r *SQLiteRepository) SetBudgetGoals(ctx context.Context, goals map[core.CategoryID]decimal.Decimal) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllBudgetGoals(ctx); err != nil {
			return fmt.Errorf("clear budget goals: %w", err)
		}
		for id, amt := range goals {
			if err := q.InsertBudgetGoal(ctx, id, amt); err != nil {
				return fmt.Errorf("insert budget goal %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	return r.inTx(ctx, func(q *Queries) error {
		return q.SetSetting(ctx, settingSavingsGoal, goal.String())
	})
}

// ApplyMonthClose commits the whole plan in one transaction. Any failure
// rolls everything back.
func (r *SQLiteRepository) ApplyMonthClose(ctx context.Context, plan core.MonthClosePlan) error {
	err := r.inTx(ctx, func(q *Queries) error {
		current, err := q.GetVersion(ctx)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		if current != plan.BaseVersion {
			return core.ErrLedgerChanged
		}
		for _, m := range plan.Moves {
			if err := q.SetTransactionDate(ctx, m.ID, m.To); err != nil {
				return fmt.Errorf("move transaction %s: %w", m.ID, err)
			}
		}
		if err := q.SetEndingOverride(ctx, plan.Period.Key(), plan.EndingBalance); err != nil {
			return fmt.Errorf("set ending balance: %w", err)
		}
		if err := q.SetBeginningOverride(ctx, plan.Next.Key(), plan.EndingBalance); err != nil {
			return fmt.Errorf("set beginning balance: %w", err)
		}
		for _, t := range plan.Materialized {
			if err := q.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Join(core.ErrMonthCloseFailed, err)
	}
	slog.InfoContext(ctx, "Month close committed to SQLite",
		"period", plan.Period.Key(),
		"moved", len(plan.Moves),
		"created", len(plan.Materialized))
	return nil
}

// Replace swaps every collection for s in one transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, s core.Snapshot) error {
	return r.inTx(ctx, func(q *Queries) error {
		wipes := []func(context.Context) error{
			q.DeleteAllTransactions,
			q.DeleteAllRecurringBills,
			q.DeleteAllDebts,
			q.DeleteAllBalanceOverrides,
			q.DeleteAllBudgetGoals,
		}
		for _, fn := range wipes {
			if err := fn(ctx); err != nil {
				return fmt.Errorf("clear ledger: %w", err)
			}
		}
		for _, t := range s.Transactions {
			if err := q.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		for _, b := range s.RecurringBills {
			if err := q.InsertRecurringBill(ctx, b); err != nil {
				return fmt.Errorf("insert recurring bill %s: %w", b.ID, err)
			}
		}
		for _, d := range s.Debts {
			if err := q.InsertDebt(ctx, d); err != nil {
				return fmt.Errorf("insert debt %s: %w", d.ID, err)
			}
		}
		for key, o := range s.Balances {
			if err := q.UpsertBalanceOverride(ctx, key, o); err != nil {
				return fmt.Errorf("insert balance override %s: %w", key, err)
			}
		}
		for id, amt := range s.BudgetGoals {
			if err := q.InsertBudgetGoal(ctx, id, amt); err != nil {
				return fmt.Errorf("insert budget goal %s: %w", id, err)
			}
		}
		return q.SetSetting(ctx, settingSavingsGoal, s.SavingsGoal.String())
	})
}
