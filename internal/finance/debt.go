package finance

import (
	"sort"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// MaxSimulationMonths caps a payoff simulation at thirty years.
const MaxSimulationMonths = 360

// Strategy orders debts for repayment.
type Strategy string

const (
	// Snowball pays the smallest balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = "avalanche"
)

// workingPrecision bounds the decimal places carried by a simulated balance.
const workingPrecision = 12

var monthsPerYear = decimal.NewFromInt(12)

// DebtPayoff records when one debt cleared.
type DebtPayoff struct {
	DebtID string `json:"debtId"`
	Name   string `json:"name"`
	Month  int    `json:"month"`
}

// PayoffResult is the outcome of one simulated ordering.
type PayoffResult struct {
	Strategy          Strategy        `json:"strategy"`
	Order             []core.Debt     `json:"order"`
	Months            int             `json:"months"`
	TotalInterestPaid decimal.Decimal `json:"totalInterestPaid"`
	PaidOff           bool            `json:"paidOff"`
	Payoffs           []DebtPayoff    `json:"payoffs"`
}

// DebtPlan compares the two orderings.
type DebtPlan struct {
	Snowball        PayoffResult    `json:"snowball"`
	Avalanche       PayoffResult    `json:"avalanche"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	TotalMinPayment decimal.Decimal `json:"totalMinPayment"`
	InterestSavings decimal.Decimal `json:"interestSavings"`
}

// Order returns a sorted copy of debts. Equal keys keep their input order.
func Order(debts []core.Debt, s Strategy) []core.Debt {
	out := append([]core.Debt(nil), debts...)
	switch s {
	case Snowball:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Balance.LessThan(out[j].Balance) })
	case Avalanche:
		sort.SliceStable(out, func(i, j int) bool { return out[i].InterestRate.GreaterThan(out[j].InterestRate) })
	}
	return out
}

// PlanDebtPayoff simulates both orderings. An empty list yields a zero plan.
func PlanDebtPayoff(debts []core.Debt) DebtPlan {
	plan := DebtPlan{
		TotalDebt:       decimal.Zero,
		TotalMinPayment: decimal.Zero,
		InterestSavings: decimal.Zero,
	}
	if len(debts) == 0 {
		plan.Snowball = PayoffResult{Strategy: Snowball, Order: []core.Debt{}, TotalInterestPaid: decimal.Zero, PaidOff: true}
		plan.Avalanche = PayoffResult{Strategy: Avalanche, Order: []core.Debt{}, TotalInterestPaid: decimal.Zero, PaidOff: true}
		return plan
	}
	for _, d := range debts {
		plan.TotalDebt = plan.TotalDebt.Add(d.Balance)
		plan.TotalMinPayment = plan.TotalMinPayment.Add(d.MinPayment)
	}
	plan.Snowball = Simulate(debts, Snowball)
	plan.Avalanche = Simulate(debts, Avalanche)
	plan.InterestSavings = plan.Snowball.TotalInterestPaid.Sub(plan.Avalanche.TotalInterestPaid)
	return plan
}

type workingDebt struct {
	debt    core.Debt
	balance decimal.Decimal
	rate    decimal.Decimal
}

// Simulate runs a month-by-month amortisation of debts in the given order.
//
// Interest accrues monthly at rate/12 before each payment. Every debt pays its
// minimum; the first debt still owing also receives the minimums freed by
// debts already cleared. Payments never exceed the remaining balance. The
// input slice is never modified.
func Simulate(debts []core.Debt, s Strategy) PayoffResult {
	order := Order(debts, s)
	res := PayoffResult{Strategy: s, Order: order, TotalInterestPaid: decimal.Zero}

	work := make([]workingDebt, len(order))
	freed := decimal.Zero
	for i, d := range order {
		work[i] = workingDebt{
			debt:    d,
			balance: d.Balance,
			rate:    d.InterestRate.Div(hundred).Div(monthsPerYear),
		}
		if !d.Balance.IsPositive() {
			freed = freed.Add(d.MinPayment)
			res.Payoffs = append(res.Payoffs, DebtPayoff{DebtID: d.ID, Name: d.Name, Month: 0})
		}
	}

	interest := decimal.Zero
	for res.Months < MaxSimulationMonths && anyOwing(work) {
		res.Months++
		for i := range work {
			w := &work[i]
			if !w.balance.IsPositive() {
				continue
			}
			accrued := w.balance.Mul(w.rate).Round(workingPrecision)
			interest = interest.Add(accrued)
			w.balance = w.balance.Add(accrued)

			payment := w.debt.MinPayment
			if i == firstOwing(work) {
				payment = payment.Add(freed)
			}
			if payment.GreaterThan(w.balance) {
				payment = w.balance
			}
			w.balance = w.balance.Sub(payment)

			if !w.balance.IsPositive() {
				freed = freed.Add(w.debt.MinPayment)
				res.Payoffs = append(res.Payoffs, DebtPayoff{DebtID: w.debt.ID, Name: w.debt.Name, Month: res.Months})
			}
		}
	}

	res.PaidOff = !anyOwing(work)
	res.TotalInterestPaid = interest.Round(0)
	return res
}

func anyOwing(work []workingDebt) bool {
	return firstOwing(work) >= 0
}

func firstOwing(work []workingDebt) int {
	for i := range work {
		if work[i].balance.IsPositive() {
			return i
		}
	}
	return -1
}
