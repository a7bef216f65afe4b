package finance

import (
	"testing"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func tx(id, date, amount string, cat core.CategoryID, paid bool) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Date: d, Description: id, Amount: dec(amount), Category: cat, Paid: paid}
}

func override(beginning, ending string) core.BalanceOverride {
	var o core.BalanceOverride
	if beginning != "" {
		o.Beginning = decimal.NewNullDecimal(dec(beginning))
	}
	if ending != "" {
		o.Ending = decimal.NewNullDecimal(dec(ending))
	}
	return o
}

func jan2025() core.Period { return core.Period{Year: 2025, Month: 0} }
