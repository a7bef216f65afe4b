package finance

import (
	"sort"
	"time"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultUpcomingWindow is how far ahead UpcomingBills looks by default.
const DefaultUpcomingWindow = 7

// UpcomingBill is an active bill with its next due date.
type UpcomingBill struct {
	core.RecurringBill
	DueDate   core.Date `json:"dueDate"`
	DaysUntil int       `json:"daysUntil"`
}

// NextDueDate is the bill's due day this month, or next month when it has
// already passed. The day is clamped to the month's length.
func NextDueDate(b core.RecurringBill, today core.Date) core.Date {
	p := today.Period()
	if b.DueDay < today.Day() {
		p = p.Next()
	}
	return p.Day(b.DueDay)
}

// UpcomingBills lists active bills due within window days of today, soonest first.
func UpcomingBills(bills []core.RecurringBill, today core.Date, window int) []UpcomingBill {
	out := []UpcomingBill{}
	for _, b := range bills {
		if !b.Active {
			continue
		}
		due := NextDueDate(b, today)
		days := int(due.Sub(today.Time) / (24 * time.Hour))
		if days < 0 || days > window {
			continue
		}
		out = append(out, UpcomingBill{RecurringBill: b, DueDate: due, DaysUntil: days})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

// SavingsProgress tracks saving against the savings goal.
type SavingsProgress struct {
	Goal        decimal.Decimal `json:"goal"`
	SavedMonth  decimal.Decimal `json:"savedThisMonth"`
	SavedYear   decimal.Decimal `json:"savedThisYear"`
	PercentGoal decimal.Decimal `json:"percentOfGoal"`
}

// Savings reports p's savings against the goal and the year-to-date total.
// The percentage is capped at 100.
func (e *Engine) Savings(p core.Period) SavingsProgress {
	month := e.Totals(p).Saved
	year := decimal.Zero
	for m := 0; m <= p.Month; m++ {
		year = year.Add(e.Totals(core.Period{Year: p.Year, Month: m}).Saved)
	}
	pct := core.Percent(month, e.snap.SavingsGoal)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return SavingsProgress{
		Goal:        e.snap.SavingsGoal,
		SavedMonth:  month,
		SavedYear:   year,
		PercentGoal: pct,
	}
}
