package finance

import (
	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const (
	// TrendWindow is the number of periods in a spending trend.
	TrendWindow = 6
	// CycleLength is the number of periods in the rolling cycle.
	CycleLength = 12
)

// Trend directions.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// stableSlope is the per-month expense change, relative to mean expenses,
// under which a trend counts as flat.
const stableSlope = 0.02

// TrendPoint is one period of a spending trend.
type TrendPoint struct {
	Period   core.Period     `json:"period"`
	Label    string          `json:"month"`
	Year     int             `json:"year"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// CyclePoint is one period of the rolling cycle.
type CyclePoint struct {
	MonthStats
	Label string `json:"month"`
}

// TrendSummary describes a trend window.
type TrendSummary struct {
	AvgIncome    decimal.Decimal `json:"avgIncome"`
	AvgExpenses  decimal.Decimal `json:"avgExpenses"`
	AvgNet       decimal.Decimal `json:"avgNet"`
	ExpenseSlope decimal.Decimal `json:"expenseSlope"`
	Direction    string          `json:"direction"`
}

// Trend returns the TrendWindow periods ending at current, oldest first.
func (e *Engine) Trend(current core.Period) []TrendPoint {
	return e.TrendN(current, TrendWindow)
}

// TrendN returns n periods ending at current, oldest first.
func (e *Engine) TrendN(current core.Period, n int) []TrendPoint {
	out := make([]TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := current.AddMonths(-i)
		t := e.Totals(p)
		out = append(out, TrendPoint{
			Period:   p,
			Label:    p.Label(),
			Year:     p.Year,
			Income:   t.Income,
			Expenses: t.Expenses,
			Net:      t.Net,
		})
	}
	return out
}

// Cycle returns the CycleLength periods ending at current with resolved
// balances, oldest first. An override may break the ending-to-beginning chain.
func (e *Engine) Cycle(current core.Period) []CyclePoint {
	out := make([]CyclePoint, 0, CycleLength)
	for i := 0; i < CycleLength; i++ {
		p := current.AddMonths(i - (CycleLength - 1))
		out = append(out, CyclePoint{MonthStats: e.Stats(p), Label: p.Label()})
	}
	return out
}

// SummarizeTrend computes averages and the expense slope per period.
func SummarizeTrend(points []TrendPoint) TrendSummary {
	s := TrendSummary{
		AvgIncome:    decimal.Zero,
		AvgExpenses:  decimal.Zero,
		AvgNet:       decimal.Zero,
		ExpenseSlope: decimal.Zero,
		Direction:    TrendStable,
	}
	if len(points) == 0 {
		return s
	}

	xs := make([]float64, len(points))
	income := make([]float64, len(points))
	expenses := make([]float64, len(points))
	net := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		income[i] = p.Income.InexactFloat64()
		expenses[i] = p.Expenses.InexactFloat64()
		net[i] = p.Net.InexactFloat64()
	}

	meanExpenses := stat.Mean(expenses, nil)
	s.AvgIncome = decimal.NewFromFloat(stat.Mean(income, nil)).Round(2)
	s.AvgExpenses = decimal.NewFromFloat(meanExpenses).Round(2)
	s.AvgNet = decimal.NewFromFloat(stat.Mean(net, nil)).Round(2)

	if len(points) < 2 {
		return s
	}
	_, slope := stat.LinearRegression(xs, expenses, nil, false)
	s.ExpenseSlope = decimal.NewFromFloat(slope).Round(2)

	threshold := stableSlope * meanExpenses
	switch {
	case meanExpenses == 0 && slope == 0:
	case slope > threshold:
		s.Direction = TrendUp
	case slope < -threshold:
		s.Direction = TrendDown
	}
	return s
}
