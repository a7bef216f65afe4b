package finance

import "balancebooks/internal/core"

// PlanMonthClose builds the batch of changes that closes p.
//
// The calculated ending of p becomes p's ending override and the next
// period's beginning override. Unpaid expenses dated in p move to the same
// day of the next month, clamped to its last day. Every active recurring bill
// materialises once in the next month on its due day. newID supplies the ids
// of the materialised transactions.
func (e *Engine) PlanMonthClose(p core.Period, newID func() string) core.MonthClosePlan {
	next := p.Next()
	plan := core.MonthClosePlan{
		BaseVersion:   e.snap.Version,
		Period:        p,
		Next:          next,
		EndingBalance: e.Stats(p).CalculatedEnding,
		Moves:         []core.TransactionMove{},
		Materialized:  []core.Transaction{},
	}

	for _, t := range e.byPeriod[p] {
		if !t.IsExpense() || t.Paid {
			continue
		}
		plan.Moves = append(plan.Moves, core.TransactionMove{
			ID:   t.ID,
			From: t.Date,
			To:   next.Day(t.Date.Day()),
		})
	}

	for _, b := range e.snap.RecurringBills {
		if !b.Active {
			continue
		}
		plan.Materialized = append(plan.Materialized, b.Materialize(newID(), next.Day(b.DueDay)))
	}
	return plan
}
