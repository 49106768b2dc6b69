package core

// convert.go turns raw cell text into typed values.
//
// The Parse* functions are strict: they report ok=false for anything that is
// not cleanly a value of the type, and the type validator turns that into a
// row error. The mapper and transformer call the same functions but substitute
// defaults on failure, so the two stages agree on what "parseable" means.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation with at most a
// three-digit exponent.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d{1,3})?$`)

// maxCurrencyLen bounds the cleaned text handed to decimal. Longer mantissas
// would make rescaling to cents cost time proportional to their square.
const maxCurrencyLen = 64

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// back a century.
var TwoDigitYearPivot = 20

// isoInstant is the rendering used for dates produced by column mapping.
const isoInstant = "2006-01-02T15:04:05.000Z07:00"

var (
	instantLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "02-Jan-2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ParseNumber parses a plain decimal or scientific-notation number.
// Thousands separators and currency symbols are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseCurrency parses a money amount after removing "$" and "," characters.
func ParseCurrency(s string) (float64, bool) {
	d, ok := parseCurrencyDecimal(s)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func parseCurrencyDecimal(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if len(s) > maxCurrencyLen || !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}
	// Amounts outside float64 range are not money.
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatCurrency renders an amount as "$" plus exactly two decimals, no separators.
func FormatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// CanonicalCurrency parses s as currency and renders it canonically, using zero
// for empty or unparseable input. It is a fixed point on its own output.
func CanonicalCurrency(s string) string {
	d, _ := parseCurrencyDecimal(s)
	return FormatCurrency(d)
}

// ParseDate parses a calendar date or timestamp in any of the accepted layouts.
// Values without a zone are taken as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatInstant renders t as an ISO-8601 UTC instant with millisecond precision.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(isoInstant)
}

// parseInt reads a whole number, truncating a decimal value. Zero on failure.
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, ok := ParseNumber(s); ok {
		return int(f)
	}
	return 0
}

// formatFloat renders f in its shortest round-trippable form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
