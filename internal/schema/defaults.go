package schema

// Built-in data type keys.
const (
	Financial    = "financial"
	Daily        = "daily"
	Products     = "products"
	Transactions = "transactions"
)

// FinancialFields describes monthly profit-and-loss summaries.
var FinancialFields = FieldConfig{
	Key:      Financial,
	Label:    "Financial periods",
	Required: []string{"month", "revenue", "expenses"},
	Optional: []string{"operationalExpenses", "nonOperationalExpenses"},
	Types: map[string]FieldType{
		"month":                  TypeString,
		"revenue":                TypeNumber,
		"expenses":               TypeNumber,
		"operationalExpenses":    TypeNumber,
		"nonOperationalExpenses": TypeNumber,
	},
}

// DailyFields describes per-day revenue and expense rows.
var DailyFields = FieldConfig{
	Key:      Daily,
	Label:    "Daily figures",
	Required: []string{"date", "revenue", "expenses"},
	Optional: []string{},
	Types: map[string]FieldType{
		"date":     TypeDate,
		"revenue":  TypeNumber,
		"expenses": TypeNumber,
	},
}

// ProductFields describes catalog items with unit price and unit cost.
var ProductFields = FieldConfig{
	Key:      Products,
	Label:    "Product catalog",
	Required: []string{"id", "price", "expense"},
	Optional: []string{"name", "category", "description"},
	Types: map[string]FieldType{
		"id":          TypeString,
		"price":       TypeCurrency,
		"expense":     TypeCurrency,
		"name":        TypeString,
		"category":    TypeString,
		"description": TypeString,
	},
}

// TransactionFields describes ledger entries.
var TransactionFields = FieldConfig{
	Key:      Transactions,
	Label:    "Transactions",
	Required: []string{"id", "amount"},
	Optional: []string{"buyer", "date", "category", "description"},
	Types: map[string]FieldType{
		"id":          TypeString,
		"amount":      TypeNumber,
		"buyer":       TypeString,
		"date":        TypeDate,
		"category":    TypeString,
		"description": TypeString,
	},
}

// Defaults returns the four built-in schemas.
func Defaults() []FieldConfig {
	return []FieldConfig{
		FinancialFields.clone(),
		DailyFields.clone(),
		ProductFields.clone(),
		TransactionFields.clone(),
	}
}
