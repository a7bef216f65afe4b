// Package importer turns bank and spreadsheet exports into candidate
// transactions and writes the transaction export.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"balancebooks/internal/core"
)

// RowError explains why a row was skipped. Row is the 1-based line number.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result holds the parsed candidates and the rows that were skipped.
// Candidates carry no ids; the ledger assigns them on save.
type Result struct {
	Transactions []core.Transaction `json:"transactions"`
	Errors       []RowError         `json:"errors"`
}

var paidValues = map[string]bool{"yes": true, "y": true, "1": true, "true": true, "paid": true, "cleared": true}

// columns maps fields to cell indexes.
type columns struct {
	date, desc, amount, category, kind, paid int
}

var positional = columns{date: 0, desc: 1, amount: 2, category: 3, kind: 4, paid: 5}

// detectColumns locates fields by header keyword. A header with no known
// keyword falls back to the positional layout Date, Description, Amount,
// Category, Type, Status.
func detectColumns(header []string) columns {
	find := func(match func(h string) bool) int {
		for i, h := range header {
			if match(strings.ToLower(strings.TrimSpace(h))) {
				return i
			}
		}
		return -1
	}
	cols := columns{
		date: find(func(h string) bool { return strings.Contains(h, "date") }),
		desc: find(func(h string) bool {
			return strings.Contains(h, "desc") || strings.Contains(h, "memo") || strings.Contains(h, "payee") || strings.Contains(h, "name")
		}),
		amount: find(func(h string) bool {
			return strings.Contains(h, "amount") || strings.Contains(h, "sum") || strings.Contains(h, "total")
		}),
		category: find(func(h string) bool { return strings.Contains(h, "cat") }),
		kind: find(func(h string) bool {
			return h == "type" || strings.Contains(h, "income") || strings.Contains(h, "expense")
		}),
		paid: find(func(h string) bool {
			return strings.Contains(h, "paid") || strings.Contains(h, "status") || strings.Contains(h, "cleared")
		}),
	}
	if cols == (columns{-1, -1, -1, -1, -1, -1}) {
		return positional
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseCSV reads a CSV export whose first row is a header. Bad rows are
// reported in Result.Errors; only an unreadable stream fails the call.
func ParseCSV(r io.Reader) (Result, error) {
	res := Result{Transactions: []core.Transaction{}, Errors: []RowError{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	cols := detectColumns(header)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Errors = append(res.Errors, RowError{Row: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		rowNum, _ := cr.FieldPos(0)
		if blank(row) || len(row) < 3 {
			continue
		}
		if len(res.Transactions) >= core.MaxTransactionCount {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: fmt.Sprintf("import limit of %d transactions reached", core.MaxTransactionCount)})
			break
		}

		t, rerr := parseRow(row, cols)
		if rerr != "" {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: rerr})
			continue
		}
		res.Transactions = append(res.Transactions, t)
	}
	return res, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, cols columns) (core.Transaction, string) {
	rawDate := cell(row, cols.date)
	date, ok := ParseDate(rawDate)
	if !ok {
		return core.Transaction{}, fmt.Sprintf("invalid date %q", rawDate)
	}
	desc := core.SanitizeText(cell(row, cols.desc))
	if desc == "" {
		return core.Transaction{}, "missing description"
	}
	rawAmount := cell(row, cols.amount)
	amount, err := core.ParseAmount(rawAmount)
	if err != nil || amount.IsZero() {
		return core.Transaction{}, fmt.Sprintf("invalid amount %q", rawAmount)
	}

	category := cell(row, cols.category)
	kind := strings.ToLower(cell(row, cols.kind))
	income := kind == "income" || strings.EqualFold(category, "income") || (amount.IsPositive() && kind != "expense")

	t := core.Transaction{
		Date:        date,
		Description: desc,
		Paid:        paidValues[strings.ToLower(cell(row, cols.paid))],
	}
	if income {
		t.Amount = amount.Abs()
		t.Category = core.CategoryIncome
	} else {
		t.Amount = amount.Abs().Neg()
		label := category
		if label == "" {
			label = desc
		}
		t.Category = core.MapCategory(label)
	}
	return t, ""
}
