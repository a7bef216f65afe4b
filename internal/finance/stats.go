package finance

import (
	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Totals are the balance-free aggregates of one period.
type Totals struct {
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Net         decimal.Decimal `json:"net"`
	Saved       decimal.Decimal `json:"saved"`
	UnpaidCount int             `json:"unpaidCount"`
}

// MonthStats is the full single-month summary.
type MonthStats struct {
	Period core.Period `json:"period"`
	Totals
	Beginning        decimal.Decimal `json:"beginning"`
	Ending           decimal.Decimal `json:"ending"`
	CalculatedEnding decimal.Decimal `json:"calculatedEnding"`
}

// SumTotals aggregates a list of transactions. Zero-dated entries are skipped.
func SumTotals(txs []core.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero, Saved: decimal.Zero}
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		switch {
		case tx.IsIncome():
			t.Income = t.Income.Add(tx.Amount)
		case tx.IsExpense():
			t.Expenses = t.Expenses.Add(tx.Amount.Abs())
			if !tx.Paid {
				t.UnpaidCount++
			}
		}
		if tx.Category == core.CategorySavings {
			t.Saved = t.Saved.Add(tx.Amount.Abs())
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// Totals returns income, expenses, net, saved and unpaid count for p.
func (e *Engine) Totals(p core.Period) Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalsLocked(p)
}

func (e *Engine) totalsLocked(p core.Period) Totals {
	if t, ok := e.totals[p]; ok {
		return t
	}
	t := SumTotals(e.byPeriod[p])
	e.totals[p] = t
	return t
}

// Stats computes the month summary for p, including resolved balances.
func (e *Engine) Stats(p core.Period) MonthStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.totalsLocked(p)
	beginning := e.beginningLocked(p)
	calculated := beginning.Add(t.Net)
	ending := calculated
	if o, ok := e.snap.Override(p); ok && o.Ending.Valid {
		ending = o.Ending.Decimal
	}
	return MonthStats{
		Period:           p,
		Totals:           t,
		Beginning:        beginning,
		Ending:           ending,
		CalculatedEnding: calculated,
	}
}

// ComputeStats is a one-shot helper for callers without an Engine.
func ComputeStats(s core.Snapshot, p core.Period) MonthStats {
	return NewEngine(s).Stats(p)
}
