package finance

import (
	"testing"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		today  core.Date
		dueDay int
		want   string
	}{
		{"later this month", core.NewDate(2025, 1, 10), 15, "2025-01-15"},
		{"today", core.NewDate(2025, 1, 10), 10, "2025-01-10"},
		{"passed rolls to next month", core.NewDate(2025, 1, 10), 5, "2025-02-05"},
		{"clamped in february", core.NewDate(2025, 2, 27), 31, "2025-02-28"},
		{"year wrap", core.NewDate(2025, 12, 20), 3, "2026-01-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(bill("b", "1", core.Monthly, tt.dueDay, true), tt.today)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestUpcomingBills(t *testing.T) {
	bills := []core.RecurringBill{
		bill("thirtieth", "10", core.Monthly, 30, true),
		bill("fifth", "10", core.Monthly, 5, true),
		bill("last", "10", core.Monthly, 31, true),
		bill("today", "10", core.Monthly, 28, true),
		bill("inactive", "10", core.Monthly, 29, false),
	}
	got := UpcomingBills(bills, core.NewDate(2025, 1, 28), DefaultUpcomingWindow)

	require.Len(t, got, 3)
	assert.Equal(t, "today", got[0].ID)
	assert.Equal(t, 0, got[0].DaysUntil)
	assert.Equal(t, "thirtieth", got[1].ID)
	assert.Equal(t, 2, got[1].DaysUntil)
	assert.Equal(t, "last", got[2].ID)
	assert.Equal(t, 3, got[2].DaysUntil)

	wider := UpcomingBills(bills, core.NewDate(2025, 1, 28), 8)
	assert.Len(t, wider, 4)
}

func TestSavingsProgress(t *testing.T) {
	s := core.Snapshot{
		SavingsGoal: dec("500"),
		Transactions: []core.Transaction{
			tx("jan", "2025-01-15", "-100", core.CategorySavings, true),
			tx("feb", "2025-02-15", "-300", core.CategorySavings, true),
			tx("dec", "2024-12-15", "-999", core.CategorySavings, true),
		},
	}
	e := NewEngine(s)

	feb := e.Savings(jan2025().Next())
	assertDecimal(t, "300", feb.SavedMonth)
	assertDecimal(t, "400", feb.SavedYear)
	assertDecimal(t, "60", feb.PercentGoal)

	s.SavingsGoal = dec("100")
	capped := NewEngine(s).Savings(jan2025().Next())
	assertDecimal(t, "100", capped.PercentGoal)

	s.SavingsGoal = decimal.Zero
	assert.True(t, NewEngine(s).Savings(jan2025()).PercentGoal.IsZero())
}
