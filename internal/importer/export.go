package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// guardFormula keeps spreadsheets from evaluating exported text as a formula.
func guardFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "\t" + s
	}
	return s
}

// WriteCSV writes every transaction, newest first, followed by a summary.
func WriteCSV(w io.Writer, txs []core.Transaction, exportedAt time.Time) error {
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date.Time) })

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Balance Books - Transaction Export"},
		{"Export Date: " + exportedAt.Format("January 2, 2006")},
		{"Report Period: All Transactions"},
		{""},
		{"Date", "Description", "Amount", "Category", "Type", "Status"},
	}

	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range sorted {
		kind, status := "Expense", "Unpaid"
		if !t.Amount.IsNegative() {
			kind = "Income"
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount.Abs())
		}
		if t.Paid {
			status = "Paid"
		}
		rows = append(rows, []string{
			guardFormula(t.Date.String()),
			guardFormula(t.Description),
			guardFormula(t.Amount.StringFixed(2)),
			guardFormula(core.LookupCategory(t.Category).Name),
			kind,
			status,
		})
	}

	rows = append(rows,
		[]string{""},
		[]string{"--- SUMMARY ---"},
		[]string{"Total Income", "", income.StringFixed(2)},
		[]string{"Total Expenses", "", expenses.Neg().StringFixed(2)},
		[]string{"Net Amount", "", income.Sub(expenses).StringFixed(2)},
		[]string{"Total Transactions", "", strconv.Itoa(len(txs))},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
