package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrMonthCloseFailed wraps every failure to apply a month close.
	ErrMonthCloseFailed = errors.New("month close failed")
	// ErrLedgerChanged means the ledger was written after the plan was built.
	ErrLedgerChanged = errors.New("ledger changed since the plan was built")
)

// TransactionMove re-dates an existing transaction.
type TransactionMove struct {
	ID   string `json:"id"`
	From Date   `json:"from"`
	To   Date   `json:"to"`
}

// MonthClosePlan is the full batch of changes a month close commits.
// Stores must apply it all at once or not at all, and only while the ledger
// is still at BaseVersion.
type MonthClosePlan struct {
	BaseVersion   int64             `json:"baseVersion"`
	Period        Period            `json:"period"`
	Next          Period            `json:"next"`
	EndingBalance decimal.Decimal   `json:"endingBalance"`
	Moves         []TransactionMove `json:"moves"`
	Materialized  []Transaction     `json:"materialized"`
}

// MonthCloseReport summarises an applied plan for confirmation display.
type MonthCloseReport struct {
	Period           Period          `json:"period"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
	UnpaidMoved      int             `json:"unpaidMoved"`
	RecurringCreated int             `json:"recurringCreated"`
}

// Report builds the confirmation summary for the plan.
func (p MonthClosePlan) Report() MonthCloseReport {
	return MonthCloseReport{
		Period:           p.Period,
		EndingBalance:    p.EndingBalance,
		UnpaidMoved:      len(p.Moves),
		RecurringCreated: len(p.Materialized),
	}
}

// ApplyTo returns a new snapshot with the plan applied. It fails without
// touching s when s is not at BaseVersion or a moved transaction is missing.
func (p MonthClosePlan) ApplyTo(s Snapshot) (Snapshot, error) {
	if s.Version != p.BaseVersion {
		return s, errors.Join(ErrMonthCloseFailed, ErrLedgerChanged)
	}
	out := s.Clone()
	idx := make(map[string]int, len(out.Transactions))
	for i, t := range out.Transactions {
		idx[t.ID] = i
	}
	for _, m := range p.Moves {
		i, ok := idx[m.ID]
		if !ok {
			return s, errors.Join(ErrMonthCloseFailed, ErrNotFound)
		}
		out.Transactions[i].Date = m.To
	}

	cur := out.Balances[p.Period.Key()]
	cur.Ending = decimal.NewNullDecimal(p.EndingBalance)
	out.Balances[p.Period.Key()] = cur

	next := out.Balances[p.Next.Key()]
	next.Beginning = decimal.NewNullDecimal(p.EndingBalance)
	out.Balances[p.Next.Key()] = next

	out.Transactions = append(out.Transactions, p.Materialized...)
	return out, nil
}
