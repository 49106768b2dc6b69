package core

// validation.go checks uploaded data against a schema in two stages:
//  1. Structure: required headers present, unexpected headers noted
//  2. Types: every non-empty cell parses as its declared type
//
// Neither stage stops at the first problem. Every missing header and every bad
// cell is reported so the user can fix the file in one pass.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/intake/internal/schema"
)

// EmptyFileMessage is the validation error for input with no non-blank lines.
const EmptyFileMessage = "File is empty"

// ValidationResult accumulates errors and warnings from one or more stages.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	IsValid  bool     `json:"isValid"`
}

func newValidationResult() ValidationResult {
	return ValidationResult{Errors: []string{}, Warnings: []string{}, IsValid: true}
}

func (r *ValidationResult) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge concatenates both results; the merged result is valid only if both are.
func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	out := newValidationResult()
	out.Errors = append(append(out.Errors, r.Errors...), other.Errors...)
	out.Warnings = append(append(out.Warnings, r.Warnings...), other.Warnings...)
	out.IsValid = r.IsValid && other.IsValid
	return out
}

// ValidateStructure compares headers with the schema's field set.
// A missing required field is an error; a header the schema does not declare
// is a warning.
func ValidateStructure(headers []string, cfg schema.FieldConfig) ValidationResult {
	result := newValidationResult()

	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	var missing []string
	for _, f := range cfg.Required {
		if _, ok := present[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		result.addError("Missing required headers: " + strings.Join(missing, ", "))
	}

	declared := make(map[string]struct{}, len(cfg.Required)+len(cfg.Optional))
	for _, f := range cfg.Fields() {
		declared[f] = struct{}{}
	}

	var extra []string
	seen := make(map[string]struct{})
	for _, h := range headers {
		if _, ok := declared[h]; ok {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		if h == "" {
			h = "(blank)"
		}
		extra = append(extra, h)
	}
	if len(extra) > 0 {
		result.addWarning("Unexpected headers will be ignored: " + strings.Join(extra, ", "))
	}

	return result
}

// ValidateTypes checks every non-empty value of every typed field in every
// record. Rows are numbered from 1; fields are visited in name order.
func ValidateTypes(records []Record, types map[string]schema.FieldType) ValidationResult {
	result := newValidationResult()

	fields := make([]string, 0, len(types))
	for f, t := range types {
		if t != schema.TypeString {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	for i, rec := range records {
		for _, field := range fields {
			value, ok := rec[field]
			if !ok || value == "" {
				continue
			}
			ft := types[field]
			if !valueMatches(value, ft) {
				result.addError(fmt.Sprintf("Row %d: %s should be a %s, got \"%s\"", i+1, field, ft, value))
			}
		}
	}

	return result
}

func valueMatches(value string, ft schema.FieldType) bool {
	switch ft {
	case schema.TypeNumber:
		_, ok := ParseNumber(value)
		return ok
	case schema.TypeCurrency:
		_, ok := ParseCurrency(value)
		return ok
	case schema.TypeDate:
		_, ok := ParseDate(value)
		return ok
	default:
		return true
	}
}
