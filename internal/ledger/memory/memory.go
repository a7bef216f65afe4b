package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// SeedFile is the optional snapshot loaded by NewFromFiles.
const SeedFile = "seed.json"

// Store keeps the ledger in memory behind a single lock.
type Store struct {
	mu   sync.RWMutex
	data core.Snapshot
}

func New(seed core.Snapshot) *Store {
	data := seed.Clone()
	data.Version = 0
	return &Store{data: data}
}

// NewFromFiles seeds the store from base/seed.json when present. A missing
// or unreadable seed yields an empty ledger.
func NewFromFiles(base string) *Store {
	seed, err := readSeed(filepath.Join(base, SeedFile))
	if err != nil {
		return New(core.Snapshot{})
	}
	clean, _ := core.SanitizeSnapshot(seed)
	return New(clean)
}

func readSeed(path string) (core.Snapshot, error) {
	var s core.Snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error { return nil }

// Snapshot returns a deep copy of the ledger.
func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), nil
}

func (s *Store) Version(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Version, nil
}

// write runs fn under the lock and bumps the version when fn succeeds.
func (s *Store) write(fn func(d *core.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.data); err != nil {
		return err
	}
	s.data.Version++
	return nil
}

func (s *Store) AddTransactions(_ context.Context, txs ...core.Transaction) error {
	return s.write(func(d *core.Snapshot) error {
		seen := make(map[string]struct{}, len(d.Transactions))
		for _, t := range d.Transactions {
			seen[t.ID] = struct{}{}
		}
		for _, t := range txs {
			if _, dup := seen[t.ID]; dup {
				return fmt.Errorf("transaction %s already exists", t.ID)
			}
			seen[t.ID] = struct{}{}
		}
		d.Transactions = append(d.Transactions, txs...)
		return nil
	})
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.Transactions {
			if d.Transactions[i].ID == t.ID {
				d.Transactions[i] = t
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	})
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.Transactions {
			if d.Transactions[i].ID == id {
				d.Transactions = append(d.Transactions[:i:i], d.Transactions[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) SetPaid(_ context.Context, ids []string, paid bool) (int, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	changed := 0
	err := s.write(func(d *core.Snapshot) error {
		for i := range d.Transactions {
			if _, ok := want[d.Transactions[i].ID]; ok && d.Transactions[i].Paid != paid {
				d.Transactions[i].Paid = paid
				changed++
			}
		}
		return nil
	})
	return changed, err
}

func (s *Store) ClearTransactions(_ context.Context) error {
	return s.write(func(d *core.Snapshot) error {
		d.Transactions = nil
		return nil
	})
}

func (s *Store) AddRecurringBill(_ context.Context, b core.RecurringBill) error {
	return s.write(func(d *core.Snapshot) error {
		for _, existing := range d.RecurringBills {
			if existing.ID == b.ID {
				return fmt.Errorf("recurring bill %s already exists", b.ID)
			}
		}
		d.RecurringBills = append(d.RecurringBills, b)
		return nil
	})
}

func (s *Store) UpdateRecurringBill(_ context.Context, b core.RecurringBill) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.RecurringBills {
			if d.RecurringBills[i].ID == b.ID {
				d.RecurringBills[i] = b
				return nil
			}
		}
		return fmt.Errorf("recurring bill %s: %w", b.ID, core.ErrNotFound)
	})
}

func (s *Store) DeleteRecurringBill(_ context.Context, id string) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.RecurringBills {
			if d.RecurringBills[i].ID == id {
				d.RecurringBills = append(d.RecurringBills[:i:i], d.RecurringBills[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("recurring bill %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) AddDebt(_ context.Context, debt core.Debt) error {
	return s.write(func(d *core.Snapshot) error {
		for _, existing := range d.Debts {
			if existing.ID == debt.ID {
				return fmt.Errorf("debt %s already exists", debt.ID)
			}
		}
		d.Debts = append(d.Debts, debt)
		return nil
	})
}

func (s *Store) UpdateDebt(_ context.Context, debt core.Debt) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.Debts {
			if d.Debts[i].ID == debt.ID {
				d.Debts[i] = debt
				return nil
			}
		}
		return fmt.Errorf("debt %s: %w", debt.ID, core.ErrNotFound)
	})
}

func (s *Store) DeleteDebt(_ context.Context, id string) error {
	return s.write(func(d *core.Snapshot) error {
		for i := range d.Debts {
			if d.Debts[i].ID == id {
				d.Debts = append(d.Debts[:i:i], d.Debts[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) SetBalanceOverride(_ context.Context, p core.Period, o core.BalanceOverride) error {
	return s.write(func(d *core.Snapshot) error {
		if d.Balances == nil {
			d.Balances = map[string]core.BalanceOverride{}
		}
		if !o.Beginning.Valid && !o.Ending.Valid {
			delete(d.Balances, p.Key())
			return nil
		}
		d.Balances[p.Key()] = o
		return nil
	})
}

func (s *Store) SetBudgetGoals(_ context.Context, goals map[core.CategoryID]decimal.Decimal) error {
	return s.write(func(d *core.Snapshot) error {
		d.BudgetGoals = make(map[core.CategoryID]decimal.Decimal, len(goals))
		for k, v := range goals {
			d.BudgetGoals[k] = v
		}
		return nil
	})
}

func (s *Store) SetSavingsGoal(_ context.Context, goal decimal.Decimal) error {
	return s.write(func(d *core.Snapshot) error {
		d.SavingsGoal = goal
		return nil
	})
}

// ApplyMonthClose applies plan under one lock. A plan that references an
// unknown transaction leaves the store untouched.
func (s *Store) ApplyMonthClose(_ context.Context, plan core.MonthClosePlan) error {
	return s.write(func(d *core.Snapshot) error {
		next, err := plan.ApplyTo(*d)
		if err != nil {
			return err
		}
		if err := checkUnique(next.Transactions); err != nil {
			return errors.Join(core.ErrMonthCloseFailed, err)
		}
		next.Version = d.Version
		*d = next
		return nil
	})
}

// Replace swaps the whole ledger for s.
func (s *Store) Replace(_ context.Context, snap core.Snapshot) error {
	return s.write(func(d *core.Snapshot) error {
		next := snap.Clone()
		next.Version = d.Version
		*d = next
		return nil
	})
}

func checkUnique(txs []core.Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	for _, t := range txs {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate transaction id %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
