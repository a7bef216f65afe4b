package finance

import (
	"sort"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// BudgetStatus classifies spending against a ceiling.
type BudgetStatus string

const (
	BudgetNone    BudgetStatus = "no-budget"
	BudgetGood    BudgetStatus = "good"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

var (
	hundred       = decimal.NewFromInt(100)
	warnThreshold = decimal.NewFromInt(80)
)

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	core.Category
	Total decimal.Decimal `json:"total"`
	Pct   decimal.Decimal `json:"pct"`
}

// BudgetLine compares one category's spending with its goal.
type BudgetLine struct {
	core.Category
	Spent       decimal.Decimal `json:"spent"`
	Budget      decimal.Decimal `json:"budget"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	Status      BudgetStatus    `json:"status"`
}

// BudgetStats rolls a budget analysis up into headline figures.
type BudgetStats struct {
	TotalBudget          decimal.Decimal `json:"totalBudget"`
	TotalSpent           decimal.Decimal `json:"totalSpent"`
	Remaining            decimal.Decimal `json:"remaining"`
	CategoriesOverBudget int             `json:"categoriesOverBudget"`
	CategoriesNearLimit  int             `json:"categoriesNearLimit"`
}

// Breakdown groups p's non-savings expenses by category, largest first.
func (e *Engine) Breakdown(p core.Period) []CategoryTotal {
	return BreakdownOf(e.byPeriod[p], e.Totals(p).Expenses)
}

// BreakdownOf groups expenses by category. Percentages are relative to expenses.
func BreakdownOf(txs []core.Transaction, expenses decimal.Decimal) []CategoryTotal {
	sums := make(map[core.CategoryID]decimal.Decimal)
	for _, tx := range txs {
		if tx.Date.IsZero() || !tx.IsExpense() || tx.Category == core.CategorySavings {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount.Abs())
	}

	out := make([]CategoryTotal, 0, len(sums))
	for id, total := range sums {
		out = append(out, CategoryTotal{
			Category: core.LookupCategory(id),
			Total:    total,
			Pct:      core.Percent(total, expenses),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return core.CategoryOrder(out[i].ID) < core.CategoryOrder(out[j].ID)
	})
	return out
}

// ClassifyBudget returns the percentage used and the status for spent against budget.
func ClassifyBudget(spent, budget decimal.Decimal) (decimal.Decimal, BudgetStatus) {
	if !budget.IsPositive() {
		return decimal.Zero, BudgetNone
	}
	pct := spent.Div(budget).Mul(hundred)
	switch {
	case pct.GreaterThan(hundred):
		return pct, BudgetOver
	case pct.GreaterThan(warnThreshold):
		return pct, BudgetWarning
	default:
		return pct, BudgetGood
	}
}

// AnalyzeBudget compares every expense category with its goal. Categories
// with neither a goal nor spending are omitted. Rows are ordered by spent.
func AnalyzeBudget(breakdown []CategoryTotal, goals map[core.CategoryID]decimal.Decimal) []BudgetLine {
	spent := make(map[core.CategoryID]decimal.Decimal, len(breakdown))
	for _, c := range breakdown {
		spent[c.ID] = c.Total
	}

	var out []BudgetLine
	for _, c := range core.Categories {
		if c.ID == core.CategoryIncome {
			continue
		}
		s := spent[c.ID]
		b := goals[c.ID]
		if b.IsNegative() {
			b = decimal.Zero
		}
		if b.IsZero() && s.IsZero() {
			continue
		}
		pct, status := ClassifyBudget(s, b)
		out = append(out, BudgetLine{
			Category:    c,
			Spent:       s,
			Budget:      b,
			Remaining:   b.Sub(s),
			PercentUsed: pct,
			Status:      status,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spent.GreaterThan(out[j].Spent)
	})
	return out
}

// SummarizeBudget rolls lines up. TotalBudget sums every goal, including
// categories without spending.
func SummarizeBudget(lines []BudgetLine, goals map[core.CategoryID]decimal.Decimal) BudgetStats {
	st := BudgetStats{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero}
	for _, g := range goals {
		if g.IsPositive() {
			st.TotalBudget = st.TotalBudget.Add(g)
		}
	}
	for _, l := range lines {
		st.TotalSpent = st.TotalSpent.Add(l.Spent)
		switch l.Status {
		case BudgetOver:
			st.CategoriesOverBudget++
		case BudgetWarning:
			st.CategoriesNearLimit++
		}
	}
	st.Remaining = st.TotalBudget.Sub(st.TotalSpent)
	return st
}

// Budget runs the analysis for p against the snapshot's goals.
func (e *Engine) Budget(p core.Period) ([]BudgetLine, BudgetStats) {
	lines := AnalyzeBudget(e.Breakdown(p), e.snap.BudgetGoals)
	return lines, SummarizeBudget(lines, e.snap.BudgetGoals)
}
