package finance

import (
	"testing"

	"balancebooks/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend_WrapsYear(t *testing.T) {
	s := core.Snapshot{Transactions: []core.Transaction{
		tx("sep", "2024-09-03", "-40", core.CategoryDining, true),
		tx("feb", "2025-02-03", "100", core.CategoryIncome, true),
	}}
	points := NewEngine(s).Trend(core.Period{Year: 2025, Month: 1})

	require.Len(t, points, TrendWindow)
	assert.Equal(t, core.Period{Year: 2024, Month: 8}, points[0].Period)
	assert.Equal(t, "Sep", points[0].Label)
	assert.Equal(t, 2024, points[0].Year)
	assertDecimal(t, "40", points[0].Expenses)
	assertDecimal(t, "-40", points[0].Net)

	last := points[len(points)-1]
	assert.Equal(t, core.Period{Year: 2025, Month: 1}, last.Period)
	assertDecimal(t, "100", last.Income)
}

func TestCycle_ChainsBalances(t *testing.T) {
	s := exampleSnapshot()
	s.Transactions = append(s.Transactions,
		tx("jun", "2025-06-10", "-50", core.CategoryDining, true),
		tx("nov", "2025-11-10", "75", core.CategoryIncome, true),
	)
	current := core.Period{Year: 2025, Month: 11}
	points := NewEngine(s).Cycle(current)

	require.Len(t, points, CycleLength)
	assert.Equal(t, jan2025(), points[0].Period)
	assert.Equal(t, current, points[11].Period)
	for i := 0; i+1 < len(points); i++ {
		assert.True(t, points[i].Ending.Equal(points[i+1].Beginning), "chain broken between %s and %s", points[i].Period.Key(), points[i+1].Period.Key())
	}
	assertDecimal(t, "325", points[11].Ending)
}

func TestCycle_OverrideBreaksChain(t *testing.T) {
	s := exampleSnapshot()
	s.Balances = map[string]core.BalanceOverride{"2025-03": override("1000", "")}
	points := NewEngine(s).Cycle(core.Period{Year: 2025, Month: 11})

	assertDecimal(t, "300", points[2].Ending)
	assertDecimal(t, "1000", points[3].Beginning)
	assertDecimal(t, "1000", points[11].Ending)
}

func TestSummarizeTrend(t *testing.T) {
	mk := func(expenses ...string) []TrendPoint {
		out := make([]TrendPoint, len(expenses))
		for i, e := range expenses {
			out[i] = TrendPoint{Income: dec("1000"), Expenses: dec(e), Net: dec("1000").Sub(dec(e))}
		}
		return out
	}

	tests := []struct {
		name      string
		points    []TrendPoint
		direction string
		slope     string
		avgExp    string
	}{
		{"empty", nil, TrendStable, "0", "0"},
		{"single", mk("500"), TrendStable, "0", "500"},
		{"rising", mk("100", "200", "300", "400", "500", "600"), TrendUp, "100", "350"},
		{"falling", mk("600", "500", "400", "300", "200", "100"), TrendDown, "-100", "350"},
		{"flat", mk("300", "300", "300", "300", "300", "300"), TrendStable, "0", "300"},
		{"noise", mk("300", "301", "299", "300", "302", "300"), TrendStable, "", "300.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeTrend(tt.points)
			assert.Equal(t, tt.direction, got.Direction)
			if tt.slope != "" {
				assertDecimal(t, tt.slope, got.ExpenseSlope)
			}
			assertDecimal(t, tt.avgExp, got.AvgExpenses)
		})
	}
}
