package services

import (
	"basic-cleaning/models"
	"basic-cleaning/utils"
)

// NYC bounding box. Listings outside it are geocoding errors.
const (
	MinLongitude = -74.25
	MaxLongitude = -73.50
	MinLatitude  = 40.5
	MaxLatitude  = 41.2
)

// CleanResult is the cleaned table plus the counts observed on the way.
type CleanResult struct {
	Table          *models.Table
	RowsIn         int
	RowsAfterPrice int
	NullDates      int
}

// Cleaner applies the basic cleaning rules to a listings table.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean keeps rows priced within [minPrice, maxPrice], normalizes
// last_review and keeps rows inside the NYC bounding box. The input table
// is not modified. Missing required columns yield *models.SchemaError.
func (c *Cleaner) Clean(t *models.Table, minPrice, maxPrice float64) (*CleanResult, error) {
	if missing := t.MissingColumns(models.RequiredColumns...); len(missing) > 0 {
		return nil, &models.SchemaError{Missing: missing}
	}
	if minPrice > maxPrice {
		c.logger.Warn("[cleaner] min_price %.2f > max_price %.2f, every row will be dropped", minPrice, maxPrice)
	}

	priceCol := t.Col(models.ColPrice)
	byPrice := t.Filter(func(row []string) bool {
		price, ok := models.ParseNumber(models.Cell(row, priceCol))
		return ok && models.Between(price, minPrice, maxPrice)
	})
	c.logger.Debug("[cleaner] Price filter [%.2f, %.2f]: %d → %d rows",
		minPrice, maxPrice, t.Len(), byPrice.Len())

	dated := c.normaliseDates(byPrice)

	lonCol, latCol := t.Col(models.ColLongitude), t.Col(models.ColLatitude)
	byGeo := dated.Filter(func(row []string) bool {
		lon, okLon := models.ParseNumber(models.Cell(row, lonCol))
		lat, okLat := models.ParseNumber(models.Cell(row, latCol))
		return okLon && okLat &&
			models.Between(lon, MinLongitude, MaxLongitude) &&
			models.Between(lat, MinLatitude, MaxLatitude)
	})

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		t.Len(), byGeo.Len(), t.Len()-byGeo.Len())

	dateCol := byGeo.Col(models.ColLastReview)
	nulls := 0
	for _, row := range byGeo.Rows {
		if models.Cell(row, dateCol) == "" {
			nulls++
		}
	}

	return &CleanResult{
		Table:          byGeo,
		RowsIn:         t.Len(),
		RowsAfterPrice: byPrice.Len(),
		NullDates:      nulls,
	}, nil
}

// normaliseDates rewrites last_review as an ISO date, or empty when the
// value cannot be parsed. Rows are copied before being changed.
func (c *Cleaner) normaliseDates(t *models.Table) *models.Table {
	col := t.Col(models.ColLastReview)
	rows := make([][]string, len(t.Rows))
	unparsed := 0

	for i, row := range t.Rows {
		out := make([]string, len(row))
		copy(out, row)
		if col >= len(out) {
			rows[i] = out
			continue
		}

		raw := models.Cell(row, col)
		if d, ok := models.ParseDate(raw); ok {
			out[col] = models.FormatDate(d)
		} else {
			if raw != "" {
				unparsed++
				c.logger.Debug("[cleaner] Unparseable last_review %q set to null", raw)
			}
			out[col] = ""
		}
		rows[i] = out
	}

	if unparsed > 0 {
		c.logger.Warn("[cleaner] %d last_review values could not be parsed and were nulled", unparsed)
	}
	return models.NewTable(t.Header, rows)
}
