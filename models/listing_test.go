package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"149", 149, true},
		{" 225.50 ", 225.5, true},
		{"-73.98", -73.98, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"$120", 0, false},
		{"free", 0, false},
		{"1_000", 0, false},
		{"0x1p4", 0, false},
		{"1,000", 0, false},
		{"nan", 0, false},
		{".5", 0.5, true},
		{"+2.", 2, true},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.raw)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseNumberInfinity(t *testing.T) {
	for _, raw := range []string{"Inf", "-inf", "+Infinity"} {
		v, ok := ParseNumber(raw)
		if !ok || !math.IsInf(v, 0) {
			t.Errorf("ParseNumber(%q) = %v, %v; want an infinity", raw, v, ok)
		}
	}
	if v, _ := ParseNumber("-inf"); Between(v, -74.25, -73.50) {
		t.Errorf("-inf must not fall inside a finite range")
	}
}

func TestBetweenIsInclusiveAndRejectsNaN(t *testing.T) {
	if !Between(10, 10, 20) || !Between(20, 10, 20) {
		t.Error("bounds must be inclusive")
	}
	if Between(math.Nextafter(10, 0), 10, 20) {
		t.Error("value just below the minimum must be excluded")
	}
	if Between(math.NaN(), math.Inf(-1), math.Inf(1)) {
		t.Error("NaN must never be in range")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2019-05-21", "2019-05-21"},
		{"2019-05-21 14:30:00", "2019-05-21 14:30:00"},
		{"2019-05-21T00:00:00Z", "2019-05-21"},
		{"5/21/2019", "2019-05-21"},
		{"05/21/2019", "2019-05-21"},
		{"2019/05/21", "2019-05-21"},
		{"May 21, 2019", "2019-05-21"},
		{"21 May 2019", "2019-05-21"},
		{"2019-05-21 10:00:00.5", "2019-05-21 10:00:00.5"},
		{"2019-05-21T10:00:00+02:00", "2019-05-21 10:00:00+02:00"},
		{"2019-05-21T10:00:00.25-05:00", "2019-05-21 10:00:00.25-05:00"},
	}

	for _, tt := range tests {
		d, ok := ParseDate(tt.raw)
		if !ok {
			t.Errorf("ParseDate(%q) failed", tt.raw)
			continue
		}
		if got := FormatDate(d); got != tt.want {
			t.Errorf("FormatDate(ParseDate(%q)) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseDateUnparseable(t *testing.T) {
	for _, raw := range []string{"", "  ", "not a date", "2019-13-45", "yesterday", "3:04PM", "Jan 2 15:04:05"} {
		if d, ok := ParseDate(raw); ok {
			t.Errorf("ParseDate(%q) = %v; want failure", raw, d)
		}
	}
}

func TestFormatDate(t *testing.T) {
	midnight := time.Date(2018, 10, 19, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(midnight); got != "2018-10-19" {
		t.Errorf("FormatDate(midnight) = %q", got)
	}
	later := time.Date(2018, 10, 19, 8, 5, 3, 0, time.UTC)
	if got := FormatDate(later); got != "2018-10-19 08:05:03" {
		t.Errorf("FormatDate(later) = %q", got)
	}
	frac := time.Date(2018, 10, 19, 8, 5, 3, 500_000_000, time.UTC)
	if got := FormatDate(frac); got != "2018-10-19 08:05:03.5" {
		t.Errorf("FormatDate(frac) = %q", got)
	}
	zoned := time.Date(2018, 10, 19, 0, 0, 0, 0, time.FixedZone("", 2*60*60))
	if got := FormatDate(zoned); got != "2018-10-19 00:00:00+02:00" {
		t.Errorf("FormatDate(zoned midnight) = %q", got)
	}
}

func TestTableColumnsAndFilter(t *testing.T) {
	tbl := NewTable([]string{"id", "price", "price"}, [][]string{{"1", "10", "x"}, {"2", "20", "y"}})

	if got := tbl.Col("price"); got != 1 {
		t.Errorf("Col(price) = %d; want first occurrence 1", got)
	}
	if got := tbl.Col("nope"); got != -1 {
		t.Errorf("Col(nope) = %d; want -1", got)
	}
	missing := tbl.MissingColumns("price", "latitude", "longitude")
	if len(missing) != 2 || missing[0] != "latitude" || missing[1] != "longitude" {
		t.Errorf("MissingColumns = %v", missing)
	}

	kept := tbl.Filter(func(row []string) bool { return row[0] == "2" })
	if kept.Len() != 1 || kept.Rows[0][0] != "2" {
		t.Errorf("Filter kept %v", kept.Rows)
	}
	if tbl.Len() != 2 {
		t.Errorf("Filter modified the source table")
	}
}

func TestCellShortRow(t *testing.T) {
	if got := Cell([]string{"a"}, 3); got != "" {
		t.Errorf("Cell on short row = %q", got)
	}
	if got := Cell([]string{"a"}, -1); got != "" {
		t.Errorf("Cell(-1) = %q", got)
	}
}

func TestErrorKinds(t *testing.T) {
	var err error = &SchemaError{Missing: []string{"price", "latitude"}}
	if err.Error() != "missing required columns: price, latitude" {
		t.Errorf("SchemaError.Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrSchema) || errors.Is(err, ErrParse) {
		t.Errorf("SchemaError kind mismatch")
	}
	if !errors.Is(&ParseError{Path: "x.csv", Line: 3}, ErrParse) {
		t.Errorf("ParseError kind mismatch")
	}
	if !errors.Is(&ResolutionError{Ref: "x:v0"}, ErrResolution) {
		t.Errorf("ResolutionError kind mismatch")
	}
}
