package domain

// Category is one of the fixed spend categories a transaction can be classified into.
type Category string

const (
	CategoryTravel     Category = "Travel"
	CategoryDining     Category = "Dining"
	CategoryGroceries  Category = "Groceries"
	CategoryShopping   Category = "Shopping"
	CategoryUtilities  Category = "Utilities"
	CategoryHealth     Category = "Health"
	CategoryFuel       Category = "Fuel"
	CategoryInvestment Category = "Investment"

	// CategoryRetailOthers is the fallback when no keyword matches.
	CategoryRetailOthers Category = "Retail/Others"
)

// Categories lists every category in classification priority order,
// followed by the fallback.
var Categories = []Category{
	CategoryTravel,
	CategoryDining,
	CategoryGroceries,
	CategoryShopping,
	CategoryUtilities,
	CategoryHealth,
	CategoryFuel,
	CategoryInvestment,
	CategoryRetailOthers,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// TransactionTypeDebit is the only transaction type kept after normalisation.
const TransactionTypeDebit = "Debit"

// Transaction is one spend from a user's statement.
// Date is carried through untouched; the engine never interprets it.
type Transaction struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"` // absolute value in INR
	Type        string   `json:"type"`
	Category    Category `json:"category"`
}
