package services

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"basic-cleaning/models"
	"basic-cleaning/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

var listingHeader = []string{"id", "name", "neighbourhood_group", "latitude", "longitude", "price", "last_review"}

func listings(rows ...[]string) *models.Table {
	return models.NewTable(listingHeader, rows)
}

func TestCleanerPriceScenario(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := listings(
		[]string{"1", "Cheap", "Brooklyn", "40.65", "-73.97", "10", "2019-05-21"},
		[]string{"2", "Fair", "Manhattan", "40.75", "-73.98", "50", "2019-05-21"},
		[]string{"3", "Pricey", "Manhattan", "40.76", "-73.99", "500", "2019-05-21"},
	)

	res, err := c.Clean(in, 20, 100)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Table.Len() != 1 || res.Table.Rows[0][0] != "2" {
		t.Errorf("expected only listing 2 to remain, got %v", res.Table.Rows)
	}
	if res.RowsIn != 3 || res.RowsAfterPrice != 1 {
		t.Errorf("counts: in=%d afterPrice=%d; want 3, 1", res.RowsIn, res.RowsAfterPrice)
	}
}

func TestCleanerPriceBoundsInclusive(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		price string
		keep  bool
	}{
		{"20", true},
		{"100", true},
		{"19.999999", false},
		{"100.000001", false},
		{"60", true},
		{"", false},
		{"n/a", false},
	}

	for _, tt := range tests {
		in := listings([]string{"1", "x", "Queens", "40.7", "-73.9", tt.price, ""})
		res, err := c.Clean(in, 20, 100)
		if err != nil {
			t.Fatalf("Clean(price=%q): %v", tt.price, err)
		}
		if got := res.Table.Len() == 1; got != tt.keep {
			t.Errorf("price %q kept = %v; want %v", tt.price, got, tt.keep)
		}
	}
}

func TestCleanerGeoFilter(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		lat, lon string
		keep     bool
	}{
		{"40.7", "-73.9", true},
		{"40.5", "-74.25", true},
		{"41.2", "-73.50", true},
		{"40.7", "-75.0", false},
		{"40.7", "-73.49", false},
		{"40.49", "-73.9", false},
		{"41.21", "-73.9", false},
		{"", "-73.9", false},
		{"40.7", "east", false},
	}

	for _, tt := range tests {
		in := listings([]string{"1", "x", "Bronx", tt.lat, tt.lon, "50", "2019-01-01"})
		res, err := c.Clean(in, 0, 1000)
		if err != nil {
			t.Fatalf("Clean(%s,%s): %v", tt.lat, tt.lon, err)
		}
		if got := res.Table.Len() == 1; got != tt.keep {
			t.Errorf("lat=%s lon=%s kept = %v; want %v", tt.lat, tt.lon, got, tt.keep)
		}
	}
}

func TestCleanerOutOfBoxLongitudeDroppedAtAnyPrice(t *testing.T) {
	c := NewCleaner(newTestLogger())
	for _, price := range []string{"0", "50", "10000"} {
		in := listings([]string{"1", "x", "Bronx", "40.7", "-75.0", price, ""})
		res, err := c.Clean(in, 0, 10000)
		if err != nil {
			t.Fatalf("Clean: %v", err)
		}
		if res.Table.Len() != 0 {
			t.Errorf("price %s: longitude -75.0 should always be dropped", price)
		}
	}
}

func TestCleanerNormalisesLastReview(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := listings(
		[]string{"1", "a", "Brooklyn", "40.65", "-73.97", "50", "2019-05-21"},
		[]string{"2", "b", "Brooklyn", "40.65", "-73.97", "50", "5/21/2019"},
		[]string{"3", "c", "Brooklyn", "40.65", "-73.97", "50", ""},
		[]string{"4", "d", "Brooklyn", "40.65", "-73.97", "50", "garbage"},
		[]string{"5", "e", "Brooklyn", "40.65", "-73.97", "50", "2019-05-21 09:15:00"},
	)

	res, err := c.Clean(in, 0, 100)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	col := res.Table.Col(models.ColLastReview)
	var got []string
	for _, row := range res.Table.Rows {
		got = append(got, row[col])
	}
	want := []string{"2019-05-21", "2019-05-21", "", "", "2019-05-21 09:15:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("last_review mismatch (-want +got):\n%s", diff)
	}
	if res.NullDates != 2 {
		t.Errorf("NullDates = %d; want 2", res.NullDates)
	}
	if in.Rows[3][6] != "garbage" {
		t.Errorf("input table was modified: %v", in.Rows[3])
	}
}

func TestCleanerPreservesColumnsAndOrder(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := listings(
		[]string{"9", "Nine, with comma", "Queens", "40.7", "-73.9", "75", "2019-01-01"},
		[]string{"8", "Eight", "Queens", "40.7", "-75.5", "75", "2019-01-01"},
		[]string{"7", "Seven", "Queens", "40.70", "-73.90", "75.00", "2019-01-01"},
	)

	res, err := c.Clean(in, 0, 100)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if diff := cmp.Diff(listingHeader, res.Table.Header); diff != "" {
		t.Errorf("header changed (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"9", "Nine, with comma", "Queens", "40.7", "-73.9", "75", "2019-01-01"},
		{"7", "Seven", "Queens", "40.70", "-73.90", "75.00", "2019-01-01"},
	}
	if diff := cmp.Diff(want, res.Table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanerMissingColumns(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := models.NewTable([]string{"id", "latitude", "longitude", "last_review"}, [][]string{{"1", "40.7", "-73.9", ""}})

	_, err := c.Clean(in, 0, 100)
	if !errors.Is(err, models.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	var se *models.SchemaError
	if !errors.As(err, &se) || len(se.Missing) != 1 || se.Missing[0] != "price" {
		t.Errorf("missing columns = %+v; want [price]", se)
	}
}

func TestCleanerInvertedBoundsDropsEverything(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := listings([]string{"1", "x", "Queens", "40.7", "-73.9", "50", ""})

	res, err := c.Clean(in, 100, 20)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Table.Len() != 0 {
		t.Errorf("expected no rows with min > max, got %d", res.Table.Len())
	}
}
