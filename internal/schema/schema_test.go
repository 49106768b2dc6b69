package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_FieldLists(t *testing.T) {
	reg := MustDefault()
	require.Equal(t, 4, reg.Len())
	assert.Equal(t, []string{"daily", "financial", "products", "transactions"}, reg.Keys())

	tests := []struct {
		key      string
		required []string
		optional []string
	}{
		{Financial, []string{"month", "revenue", "expenses"}, []string{"operationalExpenses", "nonOperationalExpenses"}},
		{Daily, []string{"date", "revenue", "expenses"}, []string{}},
		{Products, []string{"id", "price", "expense"}, []string{"name", "category", "description"}},
		{Transactions, []string{"id", "amount"}, []string{"buyer", "date", "category", "description"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg, ok := reg.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.required, cfg.Required)
			assert.Equal(t, tt.optional, cfg.Optional)
		})
	}
}

func TestTemplate(t *testing.T) {
	reg := MustDefault()

	cfg, _ := reg.Get(Transactions)
	assert.Equal(t, "id,amount,buyer,date,category,description\n", cfg.Template())

	cfg, _ = reg.Get(Daily)
	assert.Equal(t, "date,revenue,expenses\n", cfg.Template())
}

func TestTypeOf_DefaultsToString(t *testing.T) {
	cfg := ProductFields
	assert.Equal(t, TypeCurrency, cfg.TypeOf("price"))
	assert.Equal(t, TypeString, cfg.TypeOf("sku"))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	reg := MustDefault()

	cfg, _ := reg.Get(Financial)
	cfg.Required[0] = "tampered"
	cfg.Types["month"] = TypeNumber

	again, _ := reg.Get(Financial)
	assert.Equal(t, "month", again.Required[0])
	assert.Equal(t, TypeString, again.Types["month"])
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfgs []FieldConfig
	}{
		{"duplicate key", []FieldConfig{FinancialFields, FinancialFields}},
		{"empty key", []FieldConfig{{Required: []string{"a"}}}},
		{"no required fields", []FieldConfig{{Key: "x"}}},
		{"type for undeclared field", []FieldConfig{{Key: "x", Required: []string{"a"}, Types: map[string]FieldType{"b": TypeNumber}}}},
		{"field declared twice", []FieldConfig{{Key: "x", Required: []string{"a"}, Optional: []string{"a"}}}},
		{"delimiter in field name", []FieldConfig{{Key: "x", Required: []string{"a,b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cfgs...)
			assert.Error(t, err)
		})
	}
}

func TestParseFieldType(t *testing.T) {
	for in, want := range map[string]FieldType{
		"string": TypeString, "NUMBER": TypeNumber, " date ": TypeDate, "Currency": TypeCurrency, "": TypeString,
	} {
		got, err := ParseFieldType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFieldType("boolean")
	assert.Error(t, err)
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
schemas:
  - key: inventory
    label: Inventory counts
    required: [sku, quantity]
    optional: [note]
    types:
      quantity: number
  - key: daily
    required: [day, total]
    types:
      total: currency
`)
	cfgs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "inventory", cfgs[0].Key)
	assert.Equal(t, TypeNumber, cfgs[0].Types["quantity"])
	assert.Equal(t, []string{}, cfgs[1].Optional)
}

func TestParse_YAMLInvalidType(t *testing.T) {
	_, err := Parse([]byte("schemas:\n  - key: x\n    required: [a]\n    types:\n      a: boolean\n"))
	assert.Error(t, err)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schemas:
  - key: daily
    required: [day, total]
    types:
      total: currency
  - key: inventory
    required: [sku]
`), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())

	daily, ok := reg.Get(Daily)
	require.True(t, ok)
	assert.Equal(t, []string{"day", "total"}, daily.Required)

	_, ok = reg.Get("inventory")
	assert.True(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
}
