package finance

import (
	"testing"

	"balancebooks/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debt(id, balance, rate, min string) core.Debt {
	return core.Debt{ID: id, Name: id, Balance: dec(balance), InterestRate: dec(rate), MinPayment: dec(min), Type: core.DebtOther}
}

func ids(debts []core.Debt) []string {
	out := make([]string, len(debts))
	for i, d := range debts {
		out[i] = d.ID
	}
	return out
}

func TestPlanDebtPayoff_Empty(t *testing.T) {
	plan := PlanDebtPayoff(nil)

	assert.Empty(t, plan.Snowball.Order)
	assert.Empty(t, plan.Avalanche.Order)
	assert.Equal(t, 0, plan.Snowball.Months)
	assertDecimal(t, "0", plan.TotalDebt)
	assertDecimal(t, "0", plan.InterestSavings)
}

func TestSimulate_SingleDebtClearsInOneMonth(t *testing.T) {
	res := Simulate([]core.Debt{debt("card", "1000", "12", "1010")}, Snowball)

	assert.Equal(t, 1, res.Months)
	assert.True(t, res.PaidOff)
	assertDecimal(t, "10", res.TotalInterestPaid)
	require.Len(t, res.Payoffs, 1)
	assert.Equal(t, 1, res.Payoffs[0].Month)
}

func TestSimulate_CapsAtThirtyYears(t *testing.T) {
	res := Simulate([]core.Debt{debt("loan", "10000", "24", "100")}, Avalanche)

	assert.Equal(t, MaxSimulationMonths, res.Months)
	assert.False(t, res.PaidOff)
	assert.Empty(t, res.Payoffs)
}

func TestSimulate_DoesNotMutateInput(t *testing.T) {
	debts := []core.Debt{debt("a", "500", "10", "50"), debt("b", "200", "20", "25")}
	before := append([]core.Debt(nil), debts...)

	_ = PlanDebtPayoff(debts)

	assert.Equal(t, ids(before), ids(debts))
	for i := range debts {
		assert.True(t, debts[i].Balance.Equal(before[i].Balance))
	}
}

func TestOrder_StableOnTies(t *testing.T) {
	debts := []core.Debt{
		debt("first", "100", "10", "10"),
		debt("second", "100", "10", "10"),
		debt("small", "50", "5", "10"),
	}
	assert.Equal(t, []string{"small", "first", "second"}, ids(Order(debts, Snowball)))
	assert.Equal(t, []string{"first", "second", "small"}, ids(Order(debts, Avalanche)))
}

func TestPlanDebtPayoff_IdenticalOrderings(t *testing.T) {
	plan := PlanDebtPayoff([]core.Debt{
		debt("card", "1000", "20", "50"),
		debt("loan", "5000", "5", "100"),
	})

	assert.Equal(t, ids(plan.Snowball.Order), ids(plan.Avalanche.Order))
	assert.Equal(t, plan.Snowball.Months, plan.Avalanche.Months)
	assert.True(t, plan.Snowball.TotalInterestPaid.Equal(plan.Avalanche.TotalInterestPaid))
	assertDecimal(t, "0", plan.InterestSavings)
	assertDecimal(t, "6000", plan.TotalDebt)
	assertDecimal(t, "150", plan.TotalMinPayment)
}

func TestPlanDebtPayoff_DivergentOrderings(t *testing.T) {
	plan := PlanDebtPayoff([]core.Debt{
		debt("card", "3000", "24", "100"),
		debt("car", "2000", "6", "100"),
		debt("dentist", "500", "0", "100"),
	})

	assert.Equal(t, []string{"dentist", "car", "card"}, ids(plan.Snowball.Order))
	assert.Equal(t, []string{"card", "car", "dentist"}, ids(plan.Avalanche.Order))

	for _, res := range []PayoffResult{plan.Snowball, plan.Avalanche} {
		assert.True(t, res.PaidOff, string(res.Strategy))
		assert.LessOrEqual(t, res.Months, MaxSimulationMonths)
		require.Len(t, res.Payoffs, 3)
	}
	assert.Equal(t, "dentist", plan.Snowball.Payoffs[0].DebtID)
	assert.Equal(t, 5, plan.Snowball.Payoffs[0].Month)
	assert.Equal(t, "dentist", plan.Avalanche.Payoffs[0].DebtID)
	assert.Equal(t, 5, plan.Avalanche.Payoffs[0].Month)

	assert.True(t, plan.Avalanche.TotalInterestPaid.LessThan(plan.Snowball.TotalInterestPaid),
		"avalanche %s vs snowball %s", plan.Avalanche.TotalInterestPaid, plan.Snowball.TotalInterestPaid)
	assert.True(t, plan.InterestSavings.Equal(plan.Snowball.TotalInterestPaid.Sub(plan.Avalanche.TotalInterestPaid)))
	assert.True(t, plan.InterestSavings.IsPositive())
	assert.True(t, plan.InterestSavings.Equal(plan.InterestSavings.Round(0)))
}

func TestSimulate_FreedPaymentPersists(t *testing.T) {
	// "tiny" clears in month one; its 100 keeps flowing to "big" every month after,
	// so big pays 200 a month from the first month on.
	res := Simulate([]core.Debt{
		debt("tiny", "100", "0", "100"),
		debt("big", "1000", "0", "100"),
	}, Snowball)

	assert.True(t, res.PaidOff)
	assert.Equal(t, 5, res.Months)
	assertDecimal(t, "0", res.TotalInterestPaid)
}
