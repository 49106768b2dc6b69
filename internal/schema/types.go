// Package schema declares the named field configurations uploads are checked against.
//
// A FieldConfig names the required and optional columns of one data type and the
// target value type of each column. Configurations are grouped in a Registry that
// is built once at startup and handed to the pipeline; nothing here is mutable
// after construction.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared value type of a column.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeCurrency FieldType = "currency"
)

// ParseFieldType converts a case-insensitive type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeString, "":
		return TypeString, nil
	case TypeNumber:
		return TypeNumber, nil
	case TypeDate:
		return TypeDate, nil
	case TypeCurrency:
		return TypeCurrency, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

// Valid reports whether t is one of the four declared types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeCurrency:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON and YAML inputs are checked.
func (t *FieldType) UnmarshalText(b []byte) error {
	ft, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// FieldConfig is a named schema: required and optional field names plus their types.
type FieldConfig struct {
	Key      string               `json:"key" yaml:"key"`
	Label    string               `json:"label,omitempty" yaml:"label,omitempty"`
	Required []string             `json:"requiredFields" yaml:"required"`
	Optional []string             `json:"optionalFields" yaml:"optional"`
	Types    map[string]FieldType `json:"fieldTypes" yaml:"types"`
}

// Fields returns required fields followed by optional fields, in declaration order.
func (c FieldConfig) Fields() []string {
	out := make([]string, 0, len(c.Required)+len(c.Optional))
	out = append(out, c.Required...)
	out = append(out, c.Optional...)
	return out
}

// TypeOf returns the declared type of a field, defaulting to string.
func (c FieldConfig) TypeOf(field string) FieldType {
	if t, ok := c.Types[field]; ok && t != "" {
		return t
	}
	return TypeString
}


// Template renders the header-only document for this schema:
// required then optional fields, comma-joined, newline terminated.
func (c FieldConfig) Template() string {
	return strings.Join(c.Fields(), ",") + "\n"
}

// validate checks internal consistency of a single configuration.
func (c FieldConfig) validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("schema key is required")
	}
	if len(c.Required) == 0 {
		return fmt.Errorf("schema %q: at least one required field is needed", c.Key)
	}

	seen := make(map[string]bool)
	for _, f := range c.Fields() {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("schema %q: empty field name", c.Key)
		}
		if strings.Contains(f, ",") {
			return fmt.Errorf("schema %q: field %q contains the delimiter", c.Key, f)
		}
		if seen[f] {
			return fmt.Errorf("schema %q: field %q declared twice", c.Key, f)
		}
		seen[f] = true
	}

	for f, t := range c.Types {
		if !seen[f] {
			return fmt.Errorf("schema %q: type declared for unknown field %q", c.Key, f)
		}
		if !t.Valid() {
			return fmt.Errorf("schema %q: field %q has invalid type %q", c.Key, f, t)
		}
	}
	return nil
}

// clone returns a deep copy so registry entries cannot be mutated through callers.
func (c FieldConfig) clone() FieldConfig {
	out := FieldConfig{
		Key:      c.Key,
		Label:    c.Label,
		Required: append([]string(nil), c.Required...),
		Optional: append([]string{}, c.Optional...),
		Types:    make(map[string]FieldType, len(c.Types)),
	}
	for k, v := range c.Types {
		out.Types[k] = v
	}
	return out
}
