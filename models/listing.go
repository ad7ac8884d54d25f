package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Column names the cleaning step depends on.
const (
	ColPrice      = "price"
	ColLongitude  = "longitude"
	ColLatitude   = "latitude"
	ColLastReview = "last_review"
)

// RequiredColumns must be present in every listings table.
var RequiredColumns = []string{ColPrice, ColLongitude, ColLatitude, ColLastReview}

// Table is an in-memory listings dataset: a header row plus raw cell text.
// Cells are kept as read so columns the step does not touch round-trip
// unchanged.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a Table and indexes its header.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
}

// Col returns the position of a column, or -1 if absent.
func (t *Table) Col(name string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// MissingColumns lists the names not found in the header, in the given order.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if t.Col(n) < 0 {
			missing = append(missing, n)
		}
	}
	return missing
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Filter returns a new Table holding the rows keep accepts, in order.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	kept := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	return &Table{Header: t.Header, Rows: kept, index: t.index}
}

// Cell returns row[col], or "" for short rows.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// numericRegexp is the accepted number grammar: plain decimals, optional
// exponent, and signed infinity. Underscores and hex floats are not numbers.
var numericRegexp = regexp.MustCompile(`^[+-]?((\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?|(?i:inf|infinity))$`)

// ParseNumber reads a numeric cell. ok is false for empty or non-numeric
// text; "nan" counts as missing.
func ParseNumber(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if !numericRegexp.MatchString(s) {
		return 0, false
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Between reports whether lo <= v <= hi. NaN is never between anything.
func Between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// fallbackDateLayouts covers common spreadsheet exports cast does not know.
var fallbackDateLayouts = []string{
	"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
	"2006/01/02", "2006.01.02",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
	"1/2/2006 15:04", "1/2/2006 15:04:05",
	"20060102",
}

// ParseDate parses a date cell leniently. ok is false when nothing matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := cast.ToTimeE(s); err == nil && t.Year() != 0 {
		return t, true
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil && t.Year() != 0 {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a parsed date the way it is written to the cleaned
// dataset. UTC midnight is written as a bare date. Anything else keeps its
// time, fractional seconds and, outside UTC, its offset.
func FormatDate(t time.Time) string {
	utc := t.Location() == time.UTC
	if utc && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	layout := "2006-01-02 15:04:05.999999999"
	if !utc {
		layout += "-07:00"
	}
	return t.Format(layout)
}
