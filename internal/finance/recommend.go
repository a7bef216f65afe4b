package finance

import (
	"fmt"
	"sort"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

// Recommendation is one advisory tip.
type Recommendation struct {
	ID        string          `json:"id"`
	Kind      string          `json:"type"`
	Priority  Priority        `json:"priority"`
	Title     string          `json:"title"`
	Message   string          `json:"description"`
	Potential decimal.Decimal `json:"potential"`
	Tips      []string        `json:"tips"`
}

// Inputs is everything the rules may look at.
type Inputs struct {
	Stats     MonthStats
	Breakdown []CategoryTotal
	Budget    BudgetStats
	Debts     []core.Debt
	Trend     TrendSummary
}

// SavingsRate is saved/income as a percentage.
func (in Inputs) SavingsRate() decimal.Decimal {
	return core.Percent(in.Stats.Saved, in.Stats.Income)
}

// ExpenseRatio is expenses/income as a percentage.
func (in Inputs) ExpenseRatio() decimal.Decimal {
	return core.Percent(in.Stats.Expenses, in.Stats.Income)
}

// Spent returns the breakdown total for a category.
func (in Inputs) Spent(id core.CategoryID) decimal.Decimal {
	for _, c := range in.Breakdown {
		if c.ID == id {
			return c.Total
		}
	}
	return decimal.Zero
}

// Rule is one entry of the recommendation table.
type Rule struct {
	ID       string
	Kind     string
	Priority Priority
	Title    string
	Tips     []string
	// Evaluate reports whether the rule fires, with its message and potential saving.
	Evaluate func(Inputs) (message string, potential decimal.Decimal, ok bool)
}

// categoryRule fires when spending in cat exceeds threshold. message receives
// the amount spent; the potential saving is savePct of it.
func categoryRule(id string, cat core.CategoryID, threshold int64, savePct string, kind string, p Priority, title, message string, tips ...string) Rule {
	pct := decimal.RequireFromString(savePct)
	limit := decimal.NewFromInt(threshold)
	return Rule{
		ID: id, Kind: kind, Priority: p, Title: title, Tips: tips,
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			spent := in.Spent(cat)
			if !spent.GreaterThan(limit) {
				return "", decimal.Zero, false
			}
			return fmt.Sprintf(message, spent.StringFixed(2)), spent.Mul(pct), true
		},
	}
}

var (
	ten    = decimal.NewFromInt(10)
	twenty = decimal.NewFromInt(20)
	ninety = decimal.NewFromInt(90)
)

// DefaultRules is the built-in rule table, evaluated in order.
var DefaultRules = []Rule{
	categoryRule("dining", core.CategoryDining, 150, "0.4", "reduce", PriorityHigh, "Reduce Dining Out",
		"You spent $%s on dining. Consider meal prepping.",
		"Cook at home 2 more days/week", "Bring lunch to work", "Use meal planning apps"),
	categoryRule("subscriptions", core.CategorySubscriptions, 50, "0.3", "audit", PriorityMedium, "Audit Subscriptions",
		"$%s on subscriptions. Review them and cancel unused services.",
		"Cancel unused streaming", "Look for annual discounts", "Share family plans"),
	categoryRule("shopping", core.CategoryShopping, 200, "0.35", "reduce", PriorityHigh, "Curb Impulse Shopping",
		"$%s on shopping. Try the 24-hour rule before non-essential purchases.",
		"Wait 24hrs before buying over $50", "Unsubscribe from retail emails", "Use a shopping list"),
	categoryRule("entertainment", core.CategoryEntertainment, 200, "0.3", "reduce", PriorityMedium, "Find Free Entertainment",
		"$%s on entertainment. Look for free local events and activities.",
		"Check library for free events", "Host game nights at home", "Explore free outdoor activities"),
	categoryRule("transportation", core.CategoryTransportation, 400, "0.2", "reduce", PriorityMedium, "Lower Transport Costs",
		"$%s on transportation. Consider carpooling or combining trips.",
		"Combine errands", "Use fuel price apps", "Carpool 2-3 days/week"),
	categoryRule("groceries", core.CategoryGroceries, 600, "0.15", "reduce", PriorityMedium, "Optimize Groceries",
		"$%s on groceries. Smart shopping can save 15-20%% monthly.",
		"Make a list and stick to it", "Buy store brands", "Use cashback apps"),
	{
		ID: "savings-low", Kind: "alert", Priority: PriorityHigh, Title: "Savings Rate Below 10%",
		Tips: []string{"Auto-transfer to savings on payday", "Start with $25-50/paycheck", "Build 3-month emergency fund"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			rate := in.SavingsRate()
			if !in.Stats.Income.IsPositive() || !rate.LessThan(ten) {
				return "", decimal.Zero, false
			}
			msg := fmt.Sprintf("Saving %s%% - experts recommend 20%%.", rate.StringFixed(1))
			return msg, in.Stats.Income.Mul(decimal.RequireFromString("0.1")).Sub(in.Stats.Saved), true
		},
	},
	{
		ID: "savings-boost", Kind: "increase", Priority: PriorityMedium, Title: "Boost Savings to 20%",
		Tips: []string{"Increase savings 1%/month", "Save windfalls and bonuses", "Follow 50/30/20 rule"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			rate := in.SavingsRate()
			if !in.Stats.Income.IsPositive() || rate.LessThan(ten) || !rate.LessThan(twenty) {
				return "", decimal.Zero, false
			}
			gap := in.Stats.Income.Mul(decimal.RequireFromString("0.2")).Sub(in.Stats.Saved)
			msg := fmt.Sprintf("Current: %s%%. Add $%s more.", rate.StringFixed(1), gap.StringFixed(2))
			return msg, gap, true
		},
	},
	{
		ID: "paycheck-to-paycheck", Kind: "alert", Priority: PriorityHigh, Title: "Living Paycheck to Paycheck",
		Tips: []string{"Track every expense for 1 week", "Cut 1 non-essential expense now", "Build $1k starter emergency fund"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			ratio := in.ExpenseRatio()
			if !in.Stats.Income.IsPositive() || !ratio.GreaterThan(ninety) {
				return "", decimal.Zero, false
			}
			msg := fmt.Sprintf("Spending %s%% of income. Almost no buffer.", ratio.StringFixed(0))
			return msg, in.Stats.Income.Mul(decimal.RequireFromString("0.1")), true
		},
	},
	{
		ID: "unpaid-bills", Kind: "alert", Priority: PriorityHigh, Title: "Manage Unpaid Bills",
		Tips: []string{"Set calendar reminders", "Enable autopay for fixed bills", "Review bills weekly"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			if in.Stats.UnpaidCount <= 3 {
				return "", decimal.Zero, false
			}
			return fmt.Sprintf("%d unpaid expenses. Stay on top of due dates.", in.Stats.UnpaidCount), decimal.Zero, true
		},
	},
	{
		ID: "over-budget", Kind: "alert", Priority: PriorityHigh, Title: "Categories Over Budget",
		Tips: []string{"Review the over-budget categories", "Move money between goals deliberately", "Adjust unrealistic goals"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			n := in.Budget.CategoriesOverBudget
			if n == 0 {
				return "", decimal.Zero, false
			}
			overspend := decimal.Zero
			if in.Budget.Remaining.IsNegative() {
				overspend = in.Budget.Remaining.Neg()
			}
			return fmt.Sprintf("%d categories are over budget this month.", n), overspend, true
		},
	},
	{
		ID: "high-interest-debt", Kind: "alert", Priority: PriorityHigh, Title: "Attack High-Interest Debt",
		Tips: []string{"Put extra payments on the highest rate first", "Ask for a lower rate", "Consider a balance transfer"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			var worst *core.Debt
			for i := range in.Debts {
				d := &in.Debts[i]
				if !d.Balance.IsPositive() || d.InterestRate.LessThan(twenty) {
					continue
				}
				if worst == nil || d.InterestRate.GreaterThan(worst.InterestRate) {
					worst = d
				}
			}
			if worst == nil {
				return "", decimal.Zero, false
			}
			monthly := worst.Balance.Mul(worst.InterestRate).Div(hundred).Div(monthsPerYear).Round(2)
			msg := fmt.Sprintf("%s charges %s%% APR, about $%s interest a month.", worst.Name, worst.InterestRate.String(), monthly.StringFixed(2))
			return msg, monthly, true
		},
	},
	{
		ID: "expenses-rising", Kind: "reduce", Priority: PriorityMedium, Title: "Spending Is Trending Up",
		Tips: []string{"Compare this month with the last six", "Find the category driving the increase", "Set a budget goal for it"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			if in.Trend.Direction != TrendUp {
				return "", decimal.Zero, false
			}
			return fmt.Sprintf("Expenses are rising by about $%s a month.", in.Trend.ExpenseSlope.StringFixed(2)), in.Trend.ExpenseSlope, true
		},
	},
	{
		ID: "savings-excellent", Kind: "success", Priority: PriorityLow, Title: "Excellent Savings Rate!",
		Tips: []string{"Max out retirement accounts", "Look into index fund investing", "Keep it up!"},
		Evaluate: func(in Inputs) (string, decimal.Decimal, bool) {
			rate := in.SavingsRate()
			if rate.LessThan(twenty) {
				return "", decimal.Zero, false
			}
			return fmt.Sprintf("Saving %s%% - above the 20%% target!", rate.StringFixed(1)), decimal.Zero, true
		},
	},
}

// Recommend evaluates rules in order and stable-sorts the hits by priority.
func Recommend(in Inputs, rules []Rule) []Recommendation {
	out := []Recommendation{}
	for _, r := range rules {
		msg, potential, ok := r.Evaluate(in)
		if !ok {
			continue
		}
		out = append(out, Recommendation{
			ID:        r.ID,
			Kind:      r.Kind,
			Priority:  r.Priority,
			Title:     r.Title,
			Message:   msg,
			Potential: potential,
			Tips:      r.Tips,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})
	return out
}

// Inputs assembles the rule inputs for p.
func (e *Engine) Inputs(p core.Period) Inputs {
	_, budget := e.Budget(p)
	return Inputs{
		Stats:     e.Stats(p),
		Breakdown: e.Breakdown(p),
		Budget:    budget,
		Debts:     append([]core.Debt(nil), e.snap.Debts...),
		Trend:     SummarizeTrend(e.Trend(p)),
	}
}
