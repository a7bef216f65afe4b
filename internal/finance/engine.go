// Package finance turns a ledger snapshot into derived financial state:
// month statistics, category breakdowns, budget status, trend series,
// the rolling twelve-month cycle, debt payoff simulations, month close plans
// and recommendations.
//
// Every function here is pure with respect to the snapshot it is given.
// Engine memoises per-period results and is safe for concurrent use.
package finance

import (
	"sync"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Engine evaluates one immutable snapshot.
type Engine struct {
	snap     core.Snapshot
	byPeriod map[core.Period][]core.Transaction
	first    core.Period
	hasFirst bool

	mu      sync.Mutex
	totals  map[core.Period]Totals
	endings map[core.Period]decimal.Decimal
}

// NewEngine indexes a private copy of s. Transactions without a usable date are dropped.
func NewEngine(s core.Snapshot) *Engine {
	e := &Engine{
		snap:     s.Clone(),
		byPeriod: make(map[core.Period][]core.Transaction),
		totals:   make(map[core.Period]Totals),
		endings:  make(map[core.Period]decimal.Decimal),
	}
	for _, t := range e.snap.Transactions {
		if t.Date.IsZero() {
			continue
		}
		p := t.Date.Period()
		e.byPeriod[p] = append(e.byPeriod[p], t)
		e.observe(p)
	}
	for key, o := range e.snap.Balances {
		if !o.Beginning.Valid && !o.Ending.Valid {
			continue
		}
		p, err := core.ParsePeriodKey(key)
		if err != nil {
			continue
		}
		e.observe(p)
	}
	return e
}

func (e *Engine) observe(p core.Period) {
	if !e.hasFirst || p.Before(e.first) {
		e.first = p
		e.hasFirst = true
	}
}

// Snapshot returns the engine's copy of the ledger.
func (e *Engine) Snapshot() core.Snapshot {
	return e.snap
}

// Transactions returns the well-formed transactions dated in p, in ledger order.
func (e *Engine) Transactions(p core.Period) []core.Transaction {
	return append([]core.Transaction(nil), e.byPeriod[p]...)
}

// FirstPeriod returns the earliest period holding a transaction or balance
// override. ok is false for an empty ledger.
func (e *Engine) FirstPeriod() (p core.Period, ok bool) {
	return e.first, e.hasFirst
}
