package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"123", 123, true},
		{"-456", -456, true},
		{"+7", 7, true},
		{"123.45", 123.45, true},
		{".99", 0.99, true},
		{"99.", 99, true},
		{"1e3", 1000, true},
		{"2.5E-2", 0.025, true},
		{"  42  ", 42, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,000", 0, false},
		{"$5", 0, false},
		{"0x10", 0, false},
		{"Infinity", 0, false},
		{"NaN", 0, false},
		{"1.2.3", 0, false},
		{"-", 0, false},
		{"1e9999", 0, false},
		{"1e-9999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"$1,234.56", 1234.56, true},
		{"1234.56", 1234.56, true},
		{"$0", 0, true},
		{"-$5.00", -5, true},
		{"$ 12", 12, true},
		{"", 0, false},
		{"$", 0, false},
		{"twelve", 0, false},
		{"€12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCurrency(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCanonicalCurrency(t *testing.T) {
	tests := map[string]string{
		"$1,234.56": "$1234.56",
		"1234.5":    "$1234.50",
		"10":        "$10.00",
		"0.005":     "$0.01",
		"":          "$0.00",
		"n/a":       "$0.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalCurrency(in), "CanonicalCurrency(%q)", in)
	}
}

func TestCanonicalCurrency_FixedPoint(t *testing.T) {
	for _, in := range []string{"$1,234.56", "99.999", "-3", "1e2"} {
		once := CanonicalCurrency(in)
		assert.Equal(t, once, CanonicalCurrency(once), "not a fixed point for %q", in)
	}
}

// within fails the test if fn has not returned after d.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not finish within %v", d)
	}
}

func TestCurrency_ExtremeMagnitudes(t *testing.T) {
	inputs := []string{
		"1e99999999",
		"1e-99999999",
		"$1e400",
		"-1e309",
		"0." + strings.Repeat("0", 100000) + "1",
		strings.Repeat("9", 65),
	}

	for _, in := range inputs {
		within(t, time.Second, func() {
			_, ok := ParseCurrency(in)
			assert.False(t, ok, "ParseCurrency(%.20q)", in)
			assert.Equal(t, "$0.00", CanonicalCurrency(in))
		})
	}

	within(t, time.Second, func() {
		assert.Equal(t, "$1000.00", CanonicalCurrency("1e3"))
		assert.Equal(t, "$0.00", CanonicalCurrency("1e-300"))
	})
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$12.30", FormatCurrency(decimal.RequireFromString("12.3")))
	assert.Equal(t, "$1000000.00", FormatCurrency(decimal.NewFromInt(1_000_000)))
}

func TestParseDate(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15", day},
		{"2024/01/15", day},
		{"1/15/2024", day},
		{"01/15/2024", day},
		{"01-15-2024", day},
		{"Jan 15, 2024", day},
		{"January 15, 2024", day},
		{"15 Jan 2024", day},
		{"15-Jan-2024", day},
		{"20240115", day},
		{"1/15/24", day},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "2024-13-45", "32/01/2024", "Jan"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "ParseDate(%q) should fail", in)
	}
}

func TestParseDate_TwoDigitPivot(t *testing.T) {
	pivot := time.Now().Year() + TwoDigitYearPivot

	got, ok := ParseDate("6/1/99")
	require.True(t, ok)
	assert.Equal(t, 1999, got.Year())

	got, ok = ParseDate("6/1/05")
	require.True(t, ok)
	assert.Equal(t, 2005, got.Year())

	got, ok = ParseDate("6/1/68")
	require.True(t, ok)
	assert.LessOrEqual(t, got.Year(), pivot)
}

func TestFormatInstant(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2024-03-01T17:00:00.000Z", FormatInstant(at))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 12, parseInt("12"))
	assert.Equal(t, 3, parseInt("3.9"))
	assert.Equal(t, 0, parseInt("lots"))
	assert.Equal(t, 0, parseInt(""))
}
