package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"
)

var cycleHeader = []any{"Month", "Period", "Beginning", "Income", "Expenses", "Net", "Ending", "Saved", "Unpaid"}

var transactionHeader = []any{"Date", "Description", "Category", "Amount", "Paid"}

// cycleValues renders the cycle as a header row followed by one row per period.
// Amounts are fixed two-decimal strings so the sheet parses them as numbers.
func cycleValues(points []finance.CyclePoint) [][]any {
	out := make([][]any, 0, len(points)+1)
	out = append(out, cycleHeader)
	for _, p := range points {
		out = append(out, []any{
			p.Label,
			p.Period.Key(),
			p.Beginning.StringFixed(2),
			p.Income.StringFixed(2),
			p.Expenses.StringFixed(2),
			p.Net.StringFixed(2),
			p.Ending.StringFixed(2),
			p.Saved.StringFixed(2),
			p.UnpaidCount,
		})
	}
	return out
}

// transactionValues keeps the transactions dated in year, oldest first.
func transactionValues(year int, txs []core.Transaction) [][]any {
	rows := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.Date.IsZero() && t.Date.Year() == year {
			rows = append(rows, t)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date.Time) })

	out := make([][]any, 0, len(rows)+1)
	out = append(out, transactionHeader)
	for _, t := range rows {
		paid := "No"
		if t.Paid {
			paid = "Yes"
		}
		out = append(out, []any{
			t.Date.String(),
			t.Description,
			core.LookupCategory(t.Category).Name,
			t.Amount.StringFixed(2),
			paid,
		})
	}
	return out
}

func width(values [][]any) int {
	w := 0
	for _, row := range values {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// columnName converts a 1-based column count to its A1 letter.
func columnName(n int) string {
	if n < 1 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
