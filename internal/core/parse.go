package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser splits delimited text into a RawTable.
//
// The zero value uses the compatibility grammar: each line is split on every
// comma and each cell loses one layer of surrounding double quotes, so a comma
// inside a quoted field still splits it. Quoted selects an RFC 4180 style
// grammar where quoted fields may contain commas.
type Parser struct {
	Quoted bool
}

// Parse uses the compatibility grammar.
func Parse(text string) RawTable {
	return Parser{}.Parse(text)
}

// Parse never fails. Lines that are blank after trimming are dropped, the first
// remaining line is the header, and ragged rows are kept as they are.
func (p Parser) Parse(text string) RawTable {
	var lines [][]string
	if p.Quoted {
		lines = splitQuoted(text)
	} else {
		lines = splitCompat(text)
	}

	if len(lines) == 0 {
		return RawTable{Headers: []string{}, Rows: [][]string{}}
	}
	return RawTable{Headers: lines[0], Rows: lines[1:]}
}

func splitCompat(text string) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		for i, c := range cells {
			cells[i] = cleanCell(c)
		}
		out = append(out, cells)
	}
	return out
}

func splitQuoted(text string) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// LazyQuotes leaves only pathological input here; keep what was read.
			break
		}
		if isBlankRecord(rec) {
			continue
		}
		for i, c := range rec {
			rec[i] = strings.TrimSpace(c)
		}
		out = append(out, rec)
	}
	return out
}

// cleanCell trims whitespace and strips one layer of surrounding double quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// isBlankRecord matches a whitespace-only line, which encoding/csv reports as
// a single empty field.
func isBlankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

// PadRow returns a row of exactly n cells: short rows are padded with empty
// strings, long rows are truncated. The input is never modified.
func PadRow(row []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// ToRecords pairs each row with the headers. Missing trailing cells become "".
// If a header name repeats, the value from its last position wins.
func ToRecords(headers []string, rows [][]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		padded := PadRow(row, len(headers))
		rec := make(Record, len(headers))
		for i, h := range headers {
			rec[h] = padded[i]
		}
		out = append(out, rec)
	}
	return out
}

// normalizeInput prepares uploaded bytes for parsing: drops a UTF-8 BOM and
// replaces invalid byte sequences with U+FFFD.
func normalizeInput(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return string(sanitizeUTF8(data))
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
