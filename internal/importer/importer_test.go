package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-05", "2025-01-05", true},
		{"2025-1-5T10:00:00Z", "2025-01-05", true},
		{"1/5/2025", "2025-01-05", true},
		{"12/31/99", "1999-12-31", true},
		{"3/1/24", "2024-03-01", true},
		{"01-05-2025", "2025-01-05", true},
		{"January 5, 2025", "2025-01-05", true},
		{"Sept 9 2024", "2024-09-09", true},
		{"45658", "2025-01-01", true},
		{"2025/02/14", "2025-02-14", true},
		{"2/30/2025", "", false},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Category,Type,Status",
		`2025-01-03,Paycheck,"$2,500.00",,income,yes`,
		`01/04/2025,Whole Foods,-84.12,Supermarket,,paid`,
		`2025-01-05,Netflix,15.99,streaming netflix,expense,no`,
		`2025-01-06,"Coffee, large",(4.50),cafe,,`,
		``,
		`bogus,Missing date,10,,,`,
		`2025-01-07,,10,,,`,
		`2025-01-08,Zero,0,,,`,
		`2025-01-09,short`,
	}, "\n")

	res, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 4)

	pay := res.Transactions[0]
	assert.Equal(t, core.CategoryIncome, pay.Category)
	assert.True(t, pay.Amount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, pay.Paid)
	assert.Empty(t, pay.ID)

	groceries := res.Transactions[1]
	assert.Equal(t, core.CategoryGroceries, groceries.Category)
	assert.True(t, groceries.Amount.Equal(decimal.RequireFromString("-84.12")))
	assert.Equal(t, "2025-01-04", groceries.Date.String())

	netflix := res.Transactions[2]
	assert.Equal(t, core.CategorySubscriptions, netflix.Category)
	assert.True(t, netflix.Amount.IsNegative(), "explicit expense type wins over a positive amount")
	assert.False(t, netflix.Paid)

	coffee := res.Transactions[3]
	assert.Equal(t, "Coffee, large", coffee.Description)
	assert.Equal(t, core.CategoryDining, coffee.Category)
	assert.True(t, coffee.Amount.Equal(decimal.RequireFromString("-4.5")))

	require.Len(t, res.Errors, 3)
	assert.Equal(t, 7, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Reason, "invalid date")
	assert.Equal(t, "missing description", res.Errors[1].Reason)
	assert.Contains(t, res.Errors[2].Error(), "row 9: invalid amount")
}

func TestParseCSV_HeaderDetection(t *testing.T) {
	input := "Memo,Posted Date,Cleared,Total\nShell gas,2025-02-01,cleared,-40\n"
	res, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	got := res.Transactions[0]
	assert.Equal(t, "Shell gas", got.Description)
	assert.Equal(t, core.CategoryTransportation, got.Category)
	assert.True(t, got.Paid)
}

func TestParseCSV_Empty(t *testing.T) {
	res, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.Errors)
}

func TestWriteCSV(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2025, 1, 1), Description: "Salary", Amount: decimal.NewFromInt(1000), Category: core.CategoryIncome, Paid: true},
		{Date: core.NewDate(2025, 1, 9), Description: "=HYPERLINK()", Amount: decimal.RequireFromString("-25.5"), Category: core.CategoryDining},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	out := buf.String()
	assert.Contains(t, out, "Export Date: February 1, 2025")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Date,Description,Amount,Category,Type,Status", lines[4])
	assert.Equal(t, "2025-01-09,\"\t=HYPERLINK()\",\"\t-25.50\",Dining,Expense,Unpaid", lines[5], "newest first, formulas guarded")
	assert.Equal(t, "2025-01-01,Salary,1000.00,Income,Income,Paid", lines[6])
	assert.Contains(t, out, "Total Expenses,,-25.50")
	assert.Contains(t, out, "Net Amount,,974.50")
	assert.Contains(t, out, "Total Transactions,,2")
}
