package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"basic-cleaning/models"
	"basic-cleaning/utils"
)

// ColNeighbourhoodGroup is grouped on when present; it is not required.
const ColNeighbourhoodGroup = "neighbourhood_group"

// Profiler summarises a cleaning pass.
type Profiler struct {
	logger *utils.Logger
}

func NewProfiler(logger *utils.Logger) *Profiler {
	return &Profiler{logger: logger}
}

// Generate computes row counts, price statistics and listings per
// neighbourhood group for a cleaned table.
func (p *Profiler) Generate(r *CleanResult) *models.DatasetProfile {
	profile := &models.DatasetProfile{
		RowsIn:          r.RowsIn,
		RowsAfterPrice:  r.RowsAfterPrice,
		RowsOut:         r.Table.Len(),
		NullLastReview:  r.NullDates,
		ListingsByGroup: make(map[string]int),
	}

	priceCol := r.Table.Col(models.ColPrice)
	prices := make([]float64, 0, r.Table.Len())
	for _, row := range r.Table.Rows {
		if v, ok := models.ParseNumber(models.Cell(row, priceCol)); ok {
			prices = append(prices, v)
		}
	}

	if len(prices) > 0 {
		sort.Float64s(prices)
		profile.MinPrice = round2(floats.Min(prices))
		profile.MaxPrice = round2(floats.Max(prices))
		profile.MeanPrice = round2(stat.Mean(prices, nil))
		profile.MedianPrice = round2(median(prices))
		if len(prices) > 1 {
			profile.StdDevPrice = round2(stat.StdDev(prices, nil))
		}
	}

	if groupCol := r.Table.Col(ColNeighbourhoodGroup); groupCol >= 0 {
		for _, row := range r.Table.Rows {
			if g := strings.TrimSpace(models.Cell(row, groupCol)); g != "" {
				profile.ListingsByGroup[g]++
			}
		}
	}

	p.logger.Debug("[profile] rows %d → %d → %d | price min %.2f max %.2f mean %.2f median %.2f",
		profile.RowsIn, profile.RowsAfterPrice, profile.RowsOut,
		profile.MinPrice, profile.MaxPrice, profile.MeanPrice, profile.MedianPrice)
	return profile
}

// median expects sorted input. Even counts average the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}

// Summary flattens a profile into run summary values.
func (p *Profiler) Summary(d *models.DatasetProfile) map[string]any {
	summary := map[string]any{
		"rows_in":          d.RowsIn,
		"rows_after_price": d.RowsAfterPrice,
		"rows_out":         d.RowsOut,
		"null_last_review": d.NullLastReview,
		"price_min":        d.MinPrice,
		"price_max":        d.MaxPrice,
		"price_mean":       d.MeanPrice,
		"price_median":     d.MedianPrice,
		"price_stddev":     d.StdDevPrice,
	}
	if len(d.ListingsByGroup) > 0 {
		groups := make(map[string]any, len(d.ListingsByGroup))
		for g, n := range d.ListingsByGroup {
			groups[g] = n
		}
		summary["listings_by_group"] = groups
	}
	return summary
}

// Print writes a human-readable report of the profile to w.
func (p *Profiler) Print(w io.Writer, d *models.DatasetProfile) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  BASIC CLEANING REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Rows\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Input rows             : \033[1m%d\033[0m\n", d.RowsIn)
	fmt.Fprintf(w, "  After price filter     : \033[1m%d\033[0m\n", d.RowsAfterPrice)
	fmt.Fprintf(w, "  After geo filter       : \033[1m%d\033[0m\n", d.RowsOut)
	fmt.Fprintf(w, "  Null last_review       : \033[1m%d\033[0m\n", d.NullLastReview)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if d.RowsOut > 0 {
		fmt.Fprintf(w, "  Mean    : \033[1;32m$%.2f\033[0m\n", d.MeanPrice)
		fmt.Fprintf(w, "  Median  : \033[1;32m$%.2f\033[0m\n", d.MedianPrice)
		fmt.Fprintf(w, "  Std dev : \033[1;32m$%.2f\033[0m\n", d.StdDevPrice)
		fmt.Fprintf(w, "  Minimum : \033[1;32m$%.2f\033[0m\n", d.MinPrice)
		fmt.Fprintf(w, "  Maximum : \033[1;32m$%.2f\033[0m\n", d.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Neighbourhood Group\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(d.ListingsByGroup) == 0 {
		fmt.Fprintf(w, "  No neighbourhood data\n")
	} else {
		type groupCount struct {
			group string
			count int
		}
		var groups []groupCount
		for g, n := range d.ListingsByGroup {
			groups = append(groups, groupCount{g, n})
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].count != groups[j].count {
				return groups[i].count > groups[j].count
			}
			return groups[i].group < groups[j].group
		})
		for _, gc := range groups {
			fmt.Fprintf(w, "  %-20s %6d\n", truncate(gc.group, 18), gc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
