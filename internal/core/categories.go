package core

// CategoryID tags a transaction, bill or budget goal.
type CategoryID string

const (
	CategoryIncome         CategoryID = "income"
	CategoryHousing        CategoryID = "housing"
	CategoryUtilities      CategoryID = "utilities"
	CategoryGroceries      CategoryID = "groceries"
	CategoryTransportation CategoryID = "transportation"
	CategoryHealthcare     CategoryID = "healthcare"
	CategoryInsurance      CategoryID = "insurance"
	CategoryEntertainment  CategoryID = "entertainment"
	CategoryDining         CategoryID = "dining"
	CategoryShopping       CategoryID = "shopping"
	CategorySubscriptions  CategoryID = "subscriptions"
	CategoryEducation      CategoryID = "education"
	CategoryTithes         CategoryID = "tithes"
	CategorySavings        CategoryID = "savings"
	CategoryInvestment     CategoryID = "investment"
	CategoryDebt           CategoryID = "debt"
	CategoryChildcare      CategoryID = "childcare"
	CategoryPets           CategoryID = "pets"
	CategoryPersonal       CategoryID = "personal"
	CategoryGifts          CategoryID = "gifts"
	CategoryTransfer       CategoryID = "transfer"
	CategoryOther          CategoryID = "other"
)

// Category carries the display metadata of a category.
type Category struct {
	ID    CategoryID `json:"id"`
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Icon  string     `json:"icon"`
}

// Categories is the catalog in display order.
var Categories = []Category{
	{CategoryIncome, "Income", "#059669", "💵"},
	{CategoryHousing, "Housing", "#4f46e5", "🏠"},
	{CategoryUtilities, "Utilities", "#7c3aed", "💡"},
	{CategoryGroceries, "Groceries", "#16a34a", "🛒"},
	{CategoryTransportation, "Transportation", "#d97706", "🚗"},
	{CategoryHealthcare, "Healthcare", "#dc2626", "🏥"},
	{CategoryInsurance, "Insurance", "#0284c7", "🛡️"},
	{CategoryEntertainment, "Entertainment", "#db2777", "🎬"},
	{CategoryDining, "Dining", "#ea580c", "🍽️"},
	{CategoryShopping, "Shopping", "#9333ea", "🛍️"},
	{CategorySubscriptions, "Subscriptions", "#0d9488", "📱"},
	{CategoryEducation, "Education", "#2563eb", "📚"},
	{CategoryTithes, "Tithes & Offerings", "#7c3aed", "⛪"},
	{CategorySavings, "Savings", "#047857", "💰"},
	{CategoryInvestment, "Investment", "#065f46", "📈"},
	{CategoryDebt, "Debt Payment", "#b91c1c", "💳"},
	{CategoryChildcare, "Childcare", "#f472b6", "👶"},
	{CategoryPets, "Pets", "#f59e0b", "🐾"},
	{CategoryPersonal, "Personal Care", "#ec4899", "💇"},
	{CategoryGifts, "Gifts & Donations", "#8b5cf6", "🎁"},
	{CategoryTransfer, "Transfer", "#475569", "🔄"},
	{CategoryOther, "Other", "#64748b", "📦"},
}

var categoryIndex = func() map[CategoryID]int {
	m := make(map[CategoryID]int, len(Categories))
	for i, c := range Categories {
		m[c.ID] = i
	}
	return m
}()

// Valid reports whether id is in the catalog.
func (id CategoryID) Valid() bool {
	_, ok := categoryIndex[id]
	return ok
}

// LookupCategory returns the catalog entry for id. Unknown ids get a bare entry.
func LookupCategory(id CategoryID) Category {
	if i, ok := categoryIndex[id]; ok {
		return Categories[i]
	}
	return Category{ID: id, Name: string(id)}
}

// CategoryOrder is the position of id in the catalog, or len(Categories) when unknown.
func CategoryOrder(id CategoryID) int {
	if i, ok := categoryIndex[id]; ok {
		return i
	}
	return len(Categories)
}
