package core

import (
	"strings"

	"github.com/JonMunkholm/intake/internal/schema"
)

// SuggestMapping proposes a target field for each header. An exact
// case-insensitive match wins; otherwise the first schema field (required, then
// optional) that the header contains; otherwise the column is left unmapped.
func SuggestMapping(headers []string, cfg schema.FieldConfig) ColumnMapping {
	fields := cfg.Fields()
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}

	out := make(ColumnMapping, 0, len(headers))
	for _, h := range headers {
		entry := MappingEntry{SourceColumn: h, DataType: string(schema.TypeString)}
		if target := matchField(strings.ToLower(strings.TrimSpace(h)), fields, lowered); target != "" {
			entry.TargetField = target
			entry.DataType = string(cfg.TypeOf(target))
		}
		out = append(out, entry)
	}
	return out
}

func matchField(header string, fields, lowered []string) string {
	if header == "" {
		return ""
	}
	for i, f := range lowered {
		if header == f {
			return fields[i]
		}
	}
	for i, f := range lowered {
		if strings.Contains(header, f) {
			return fields[i]
		}
	}
	return ""
}

// ApplyMapping builds fresh records holding only the mapped fields, each value
// coerced per its entry's DataType. Coercion never fails here: unparseable
// numbers and currency amounts become 0 and unparseable dates pass through.
func ApplyMapping(records []Record, mapping ColumnMapping) []Record {
	entries := mapping.Mapped()
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		mapped := make(Record, len(entries))
		for _, e := range entries {
			value, ok := rec[e.SourceColumn]
			if !ok {
				continue
			}
			mapped[e.TargetField] = coerce(value, e.DataType)
		}
		out = append(out, mapped)
	}
	return out
}

func coerce(value, dataType string) string {
	ft, err := schema.ParseFieldType(dataType)
	if err != nil {
		ft = schema.TypeString
	}

	switch ft {
	case schema.TypeNumber:
		f, _ := ParseNumber(value)
		return formatFloat(f)
	case schema.TypeCurrency:
		d, _ := parseCurrencyDecimal(value)
		return d.String()
	case schema.TypeDate:
		if t, ok := ParseDate(value); ok {
			return FormatInstant(t)
		}
		return value
	default:
		return value
	}
}
