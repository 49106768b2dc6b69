package core

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/intake/internal/schema"
)

// DomainRecord is a canonical output row ready for persistence.
type DomainRecord interface {
	DataType() string
	RecordID() string
}

// FinancialPeriodRecord is one month of profit and loss.
type FinancialPeriodRecord struct {
	Month                  string  `json:"month"`
	Revenue                string  `json:"revenue"`
	Expenses               string  `json:"expenses"`
	OperationalExpenses    string  `json:"operationalExpenses"`
	NonOperationalExpenses string  `json:"nonOperationalExpenses"`
	Profit                 string  `json:"profit"`
	GrowthRate             float64 `json:"growthRate"`
}

func (FinancialPeriodRecord) DataType() string   { return schema.Financial }
func (r FinancialPeriodRecord) RecordID() string { return r.Month }

// DailyRecord is one day of revenue and expenses.
type DailyRecord struct {
	Date      string `json:"date"`
	Revenue   string `json:"revenue"`
	Expenses  string `json:"expenses"`
	Profit    string `json:"profit"`
	DayOfWeek string `json:"dayOfWeek"`
}

func (DailyRecord) DataType() string   { return schema.Daily }
func (r DailyRecord) RecordID() string { return r.Date }

// CatalogItemRecord is one product in the catalog.
type CatalogItemRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        string   `json:"price"`
	Expense      string   `json:"expense"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Supplier     string   `json:"supplier"`
	InStock      int      `json:"inStock"`
	LastUpdated  string   `json:"lastUpdated"`
	Transactions []string `json:"transactions"`
}

func (CatalogItemRecord) DataType() string   { return schema.Products }
func (r CatalogItemRecord) RecordID() string { return r.ID }

// LedgerEntryRecord is one transaction. Amount stays numeric.
type LedgerEntryRecord struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Buyer         string  `json:"buyer"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

func (LedgerEntryRecord) DataType() string   { return schema.Transactions }
func (r LedgerEntryRecord) RecordID() string { return r.ID }

// GenericRecord carries rows of a data type loaded from a schema file, which
// has no dedicated shape. Only declared fields are kept.
type GenericRecord struct {
	Type   string
	Key    string
	Fields Record
}

func (r GenericRecord) DataType() string { return r.Type }
func (r GenericRecord) RecordID() string { return r.Key }

// MarshalJSON flattens the fields into the top-level object.
func (r GenericRecord) MarshalJSON() ([]byte, error) {
	return marshalRecord(r.Fields)
}

// Transformer builds domain records. Every field has a default, so the
// per-shape functions cannot fail.
type Transformer struct {
	Now func() time.Time
}

func (t Transformer) now() string {
	if t.Now == nil {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return t.Now().UTC().Format(time.RFC3339)
}

// Financial converts records to FinancialPeriodRecords.
func (t Transformer) Financial(records []Record) []FinancialPeriodRecord {
	out := make([]FinancialPeriodRecord, 0, len(records))
	for _, r := range records {
		growth, _ := ParseNumber(r["growthRate"])
		out = append(out, FinancialPeriodRecord{
			Month:                  r["month"],
			Revenue:                CanonicalCurrency(r["revenue"]),
			Expenses:               CanonicalCurrency(r["expenses"]),
			OperationalExpenses:    CanonicalCurrency(r["operationalExpenses"]),
			NonOperationalExpenses: CanonicalCurrency(r["nonOperationalExpenses"]),
			Profit:                 CanonicalCurrency(r["profit"]),
			GrowthRate:             growth,
		})
	}
	return out
}

// Daily converts records to DailyRecords.
func (t Transformer) Daily(records []Record) []DailyRecord {
	out := make([]DailyRecord, 0, len(records))
	for _, r := range records {
		out = append(out, DailyRecord{
			Date:      r["date"],
			Revenue:   CanonicalCurrency(r["revenue"]),
			Expenses:  CanonicalCurrency(r["expenses"]),
			Profit:    CanonicalCurrency(r["profit"]),
			DayOfWeek: r["dayOfWeek"],
		})
	}
	return out
}

// Catalog converts records to CatalogItemRecords.
func (t Transformer) Catalog(records []Record) []CatalogItemRecord {
	out := make([]CatalogItemRecord, 0, len(records))
	for _, r := range records {
		id := r["id"]
		out = append(out, CatalogItemRecord{
			ID:           id,
			Name:         orDefault(r["name"], "Product "+id),
			Price:        CanonicalCurrency(r["price"]),
			Expense:      CanonicalCurrency(r["expense"]),
			Category:     orDefault(r["category"], "General"),
			Description:  r["description"],
			Supplier:     r["supplier"],
			InStock:      parseInt(r["inStock"]),
			LastUpdated:  orDefault(r["lastUpdated"], t.now()),
			Transactions: []string{},
		})
	}
	return out
}

// Ledger converts records to LedgerEntryRecords.
func (t Transformer) Ledger(records []Record) []LedgerEntryRecord {
	out := make([]LedgerEntryRecord, 0, len(records))
	for _, r := range records {
		amount, _ := ParseNumber(r["amount"])
		out = append(out, LedgerEntryRecord{
			ID:            r["id"],
			Amount:        amount,
			Buyer:         r["buyer"],
			Category:      orDefault(r["category"], "Miscellaneous"),
			Description:   r["description"],
			PaymentMethod: r["paymentMethod"],
			Status:        orDefault(r["status"], "Completed"),
			CreatedAt:     orDefault(r["date"], t.now()),
		})
	}
	return out
}

// Generic keeps only cfg's declared fields. The first required field is the key.
func (t Transformer) Generic(cfg schema.FieldConfig, records []Record) []GenericRecord {
	fields := cfg.Fields()
	out := make([]GenericRecord, 0, len(records))
	for _, r := range records {
		kept := make(Record, len(fields))
		for _, f := range fields {
			if v, ok := r[f]; ok {
				kept[f] = v
			}
		}
		out = append(out, GenericRecord{Type: cfg.Key, Key: r[cfg.Required[0]], Fields: kept})
	}
	return out
}

// Transform dispatches on cfg.Key. The four built-in data types get their
// dedicated shape; any other registered type becomes GenericRecords.
func (t Transformer) Transform(cfg schema.FieldConfig, records []Record) ([]DomainRecord, error) {
	switch cfg.Key {
	case schema.Financial:
		return asDomain(t.Financial(records)), nil
	case schema.Daily:
		return asDomain(t.Daily(records)), nil
	case schema.Products:
		return asDomain(t.Catalog(records)), nil
	case schema.Transactions:
		return asDomain(t.Ledger(records)), nil
	case "":
		return nil, fmt.Errorf("transform: %w", ErrUnknownDataType)
	default:
		if len(cfg.Required) == 0 {
			return nil, fmt.Errorf("transform %s: %w", cfg.Key, ErrUnknownDataType)
		}
		return asDomain(t.Generic(cfg, records)), nil
	}
}

func asDomain[T DomainRecord](in []T) []DomainRecord {
	out := make([]DomainRecord, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
