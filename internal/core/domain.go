package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	DebtCreditCard   DebtType = "credit-card"
	DebtStudentLoan  DebtType = "student-loan"
	DebtAutoLoan     DebtType = "auto-loan"
	DebtMortgage     DebtType = "mortgage"
	DebtPersonalLoan DebtType = "personal-loan"
	DebtMedical      DebtType = "medical"
	DebtOther        DebtType = "other"
)

// MaxTextLength bounds descriptions and names.
const MaxTextLength = 500

type (
	Frequency string
	DebtType  string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"desc"`
		Amount      decimal.Decimal `json:"amount"`
		Category    CategoryID      `json:"category"`
		Paid        bool            `json:"paid"`
	}

	RecurringBill struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		Category  CategoryID      `json:"category"`
		Frequency Frequency       `json:"frequency"`
		DueDay    int             `json:"dueDay"`
		Active    bool            `json:"active"`
		AutoPay   bool            `json:"autoPay"`
	}

	Debt struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Balance      decimal.Decimal `json:"balance"`
		InterestRate decimal.Decimal `json:"interestRate"`
		MinPayment   decimal.Decimal `json:"minPayment"`
		Type         DebtType        `json:"type"`
	}

	// BalanceOverride pins the beginning and/or ending balance of a period.
	BalanceOverride struct {
		Beginning decimal.NullDecimal `json:"beginning"`
		Ending    decimal.NullDecimal `json:"ending"`
	}

	// Snapshot is a read-only copy of every ledger collection.
	Snapshot struct {
		Version        int64                          `json:"-"`
		Transactions   []Transaction                  `json:"transactions"`
		RecurringBills []RecurringBill                `json:"recurringExpenses"`
		Debts          []Debt                         `json:"debts"`
		Balances       map[string]BalanceOverride     `json:"monthlyBalances"`
		BudgetGoals    map[CategoryID]decimal.Decimal `json:"budgetGoals"`
		SavingsGoal    decimal.Decimal                `json:"savingsGoal"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrTextTooLong      = errors.New("text too long")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDueDay    = errors.New("invalid due day")
	ErrInvalidDebtType  = errors.New("invalid debt type")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrNotFound         = errors.New("not found")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month (1-12), day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Period returns the period the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: int(d.Month()) - 1}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON leaves the date zero when the value cannot be parsed;
// zero-dated transactions are skipped by every aggregation.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = Date{Time: parsed}
	return nil
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports whether the transaction draws from the balance.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxTextLength {
		return ErrTextTooLong
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, t.Category)
	}
	return nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (b RecurringBill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > MaxTextLength {
		return ErrTextTooLong
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.Category.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, b.Category)
	}
	if !b.Frequency.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidFrequency, b.Frequency)
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

// Materialize creates the expense a bill produces on the given day.
func (b RecurringBill) Materialize(id string, on Date) Transaction {
	return Transaction{
		ID:          id,
		Date:        on,
		Description: b.Name,
		Amount:      b.Amount.Neg(),
		Category:    b.Category,
		Paid:        b.AutoPay,
	}
}

func (t DebtType) Valid() bool {
	switch t {
	case DebtCreditCard, DebtStudentLoan, DebtAutoLoan, DebtMortgage, DebtPersonalLoan, DebtMedical, DebtOther:
		return true
	}
	return false
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return ErrEmptyName
	}
	if len(d.Name) > MaxTextLength {
		return ErrTextTooLong
	}
	if d.Balance.IsNegative() || d.MinPayment.IsNegative() || d.InterestRate.IsNegative() {
		return ErrInvalidAmount
	}
	if d.Type != "" && !d.Type.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDebtType, d.Type)
	}
	return nil
}

// Override returns the balance override stored for p, if any.
func (s Snapshot) Override(p Period) (BalanceOverride, bool) {
	o, ok := s.Balances[p.Key()]
	return o, ok
}

// Clone returns a deep copy so callers can hand out snapshots without sharing backing arrays.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Version:        s.Version,
		Transactions:   append([]Transaction(nil), s.Transactions...),
		RecurringBills: append([]RecurringBill(nil), s.RecurringBills...),
		Debts:          append([]Debt(nil), s.Debts...),
		Balances:       make(map[string]BalanceOverride, len(s.Balances)),
		BudgetGoals:    make(map[CategoryID]decimal.Decimal, len(s.BudgetGoals)),
		SavingsGoal:    s.SavingsGoal,
	}
	for k, v := range s.Balances {
		out.Balances[k] = v
	}
	for k, v := range s.BudgetGoals {
		out.BudgetGoals[k] = v
	}
	return out
}

var validationErrors = []error{
	ErrInvalidDate, ErrInvalidAmount, ErrEmptyDescription, ErrEmptyName, ErrTextTooLong,
	ErrInvalidCategory, ErrInvalidFrequency, ErrInvalidDueDay, ErrInvalidDebtType, ErrInvalidPeriod,
}

// IsValidation reports whether err stems from rejected user input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
