package core

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTransactionCount caps imports and restores.
const MaxTransactionCount = 50_000

// Skipped counts records dropped while sanitising a bundle.
type Skipped struct {
	Transactions   int `json:"transactions"`
	RecurringBills int `json:"recurringExpenses"`
	Debts          int `json:"debts"`
}

// SanitizeText trims s and bounds it to MaxTextLength bytes.
func SanitizeText(s string) string {
	if len(s) > MaxTextLength {
		s = strings.ToValidUTF8(s[:MaxTextLength], "")
	}
	return strings.TrimSpace(s)
}

// SanitizeTransaction normalises a candidate record. It returns false when the
// record has no usable date; unknown categories fall back to CategoryOther.
func SanitizeTransaction(t Transaction) (Transaction, bool) {
	if t.Date.IsZero() {
		return Transaction{}, false
	}
	t.Description = SanitizeText(t.Description)
	if !t.Category.Valid() {
		t.Category = CategoryOther
	}
	return t, true
}

// SanitizeTransactions drops unusable records and caps the result at MaxTransactionCount.
func SanitizeTransactions(in []Transaction) ([]Transaction, int) {
	if len(in) > MaxTransactionCount {
		in = in[:MaxTransactionCount]
	}
	out := make([]Transaction, 0, len(in))
	for _, t := range in {
		if clean, ok := SanitizeTransaction(t); ok {
			out = append(out, clean)
		}
	}
	return out, len(in) - len(out)
}

// uniqueIDs hands out ids within one collection. Empty and repeated ids are
// replaced with fresh ones so every record stays addressable.
type uniqueIDs map[string]struct{}

func (u uniqueIDs) claim(id string) string {
	id = strings.TrimSpace(id)
	if _, taken := u[id]; id == "" || taken {
		id = uuid.NewString()
	}
	u[id] = struct{}{}
	return id
}

// SanitizeSnapshot cleans a restored bundle and reports how many records were
// dropped. Records without an id, or sharing one, get a fresh id.
func SanitizeSnapshot(s Snapshot) (Snapshot, Skipped) {
	var skipped Skipped
	out := Snapshot{
		Balances:    map[string]BalanceOverride{},
		BudgetGoals: map[CategoryID]decimal.Decimal{},
		SavingsGoal: s.SavingsGoal,
	}

	out.Transactions, skipped.Transactions = SanitizeTransactions(s.Transactions)
	if len(s.Transactions) > MaxTransactionCount {
		skipped.Transactions += len(s.Transactions) - MaxTransactionCount
	}
	txIDs := uniqueIDs{}
	for i := range out.Transactions {
		out.Transactions[i].ID = txIDs.claim(out.Transactions[i].ID)
	}

	billIDs, debtIDs := uniqueIDs{}, uniqueIDs{}

	for _, b := range s.RecurringBills {
		b.Name = SanitizeText(b.Name)
		if !b.Category.Valid() {
			b.Category = CategoryOther
		}
		if b.Frequency == "" {
			b.Frequency = Monthly
		}
		if b.Name == "" || b.DueDay < 1 || b.DueDay > 31 || !b.Frequency.Valid() {
			skipped.RecurringBills++
			continue
		}
		b.ID = billIDs.claim(b.ID)
		out.RecurringBills = append(out.RecurringBills, b)
	}

	for _, d := range s.Debts {
		d.Name = SanitizeText(d.Name)
		if d.Type == "" || !d.Type.Valid() {
			d.Type = DebtOther
		}
		if d.Name == "" || d.Balance.IsNegative() || d.MinPayment.IsNegative() || d.InterestRate.IsNegative() {
			skipped.Debts++
			continue
		}
		d.ID = debtIDs.claim(d.ID)
		out.Debts = append(out.Debts, d)
	}

	for key, o := range s.Balances {
		if _, err := ParsePeriodKey(key); err != nil {
			continue
		}
		if o.Beginning.Valid || o.Ending.Valid {
			out.Balances[key] = o
		}
	}

	for id, v := range s.BudgetGoals {
		if id.Valid() && !v.IsNegative() {
			out.BudgetGoals[id] = v
		}
	}
	return out, skipped
}
