package finance

import (
	"fmt"
	"testing"

	"balancebooks/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func closeFixture() core.Snapshot {
	return core.Snapshot{
		Transactions: []core.Transaction{
			tx("salary", "2025-01-05", "3000", core.CategoryIncome, false),
			tx("phone", "2025-01-31", "-60", core.CategoryUtilities, false),
			tx("gym", "2025-01-12", "-40", core.CategoryHealthcare, false),
			tx("rent", "2025-01-01", "-1200", core.CategoryHousing, true),
			tx("feb", "2025-02-02", "-10", core.CategoryDining, false),
		},
		RecurringBills: []core.RecurringBill{
			{ID: "b-rent", Name: "Rent", Amount: dec("1200"), Category: core.CategoryHousing, Frequency: core.Monthly, DueDay: 1, Active: true, AutoPay: true},
			{ID: "b-card", Name: "Card", Amount: dec("80"), Category: core.CategoryDebt, Frequency: core.Monthly, DueDay: 31, Active: true},
			{ID: "b-old", Name: "Old", Amount: dec("5"), Category: core.CategoryOther, Frequency: core.Monthly, DueDay: 3, Active: false},
		},
	}
}

func TestPlanMonthClose(t *testing.T) {
	e := NewEngine(closeFixture())
	plan := e.PlanMonthClose(jan2025(), sequence("new"))

	assert.Equal(t, jan2025(), plan.Period)
	assert.Equal(t, jan2025().Next(), plan.Next)
	assertDecimal(t, "1700", plan.EndingBalance)

	require.Len(t, plan.Moves, 2)
	assert.Equal(t, "phone", plan.Moves[0].ID)
	assert.Equal(t, "2025-02-28", plan.Moves[0].To.String(), "day clamps to the shorter month")
	assert.Equal(t, "gym", plan.Moves[1].ID)
	assert.Equal(t, "2025-02-12", plan.Moves[1].To.String())

	require.Len(t, plan.Materialized, 2)
	rent := plan.Materialized[0]
	assert.Equal(t, "new-1", rent.ID)
	assert.Equal(t, "2025-02-01", rent.Date.String())
	assertDecimal(t, "-1200", rent.Amount)
	assert.True(t, rent.Paid)
	card := plan.Materialized[1]
	assert.Equal(t, "2025-02-28", card.Date.String())
	assert.False(t, card.Paid)

	report := plan.Report()
	assert.Equal(t, 2, report.UnpaidMoved)
	assert.Equal(t, 2, report.RecurringCreated)
}

func TestPlanMonthClose_CarryForward(t *testing.T) {
	s := closeFixture()
	plan := NewEngine(s).PlanMonthClose(jan2025(), sequence("new"))

	closed, err := plan.ApplyTo(s)
	require.NoError(t, err)

	after := NewEngine(closed)
	feb := after.Stats(jan2025().Next())
	assert.True(t, feb.Beginning.Equal(plan.EndingBalance))
	assertDecimal(t, "1700", after.Stats(jan2025()).Ending)

	janIDs := map[string]bool{}
	for _, tr := range after.Transactions(jan2025()) {
		janIDs[tr.ID] = true
	}
	febIDs := map[string]bool{}
	for _, tr := range after.Transactions(jan2025().Next()) {
		febIDs[tr.ID] = true
	}
	for _, m := range plan.Moves {
		assert.False(t, janIDs[m.ID], "%s still in January", m.ID)
		assert.True(t, febIDs[m.ID], "%s missing from February", m.ID)
	}
	assert.True(t, janIDs["salary"], "unpaid income stays put")
	assert.True(t, febIDs["new-1"] && febIDs["new-2"])
}

func TestPlanMonthClose_EmptyLedger(t *testing.T) {
	plan := NewEngine(core.Snapshot{}).PlanMonthClose(core.Period{Year: 2024, Month: 11}, sequence("x"))

	assert.Equal(t, core.Period{Year: 2025, Month: 0}, plan.Next)
	assertDecimal(t, "0", plan.EndingBalance)
	assert.Empty(t, plan.Moves)
	assert.Empty(t, plan.Materialized)
}
