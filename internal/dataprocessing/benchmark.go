package dataprocessing

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// UnitValueStats describes unit customs values over rows with a positive
// quantity. An empty table yields zero stats.
func UnitValueStats(t *Table) domain.PriceStats {
	var values []float64
	for _, r := range t.recordsView() {
		if r.Quantity > 0 {
			values = append(values, r.UnitCustomsValue)
		}
	}
	if len(values) == 0 {
		return domain.PriceStats{}
	}

	return domain.PriceStats{
		Count:  len(values),
		Min:    floats.Min(values),
		Median: median(values),
		Max:    floats.Max(values),
		Mean:   stat.Mean(values, nil),
	}
}

// median averages the two middle values of an even-length sample.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CategoryStats benchmarks the categories of d: volume, value, volume-weighted
// unit value and the mean and sample standard deviation of row unit values.
// Sorted by weighted unit value descending, then category; n <= 0 keeps all.
func CategoryStats(t *Table, d domain.Dimension, n int) []domain.CategoryStats {
	unitValues := make(map[string][]float64)
	for _, r := range t.recordsView() {
		if r.Quantity > 0 {
			key := r.Category(d)
			unitValues[key] = append(unitValues[key], r.UnitCustomsValue)
		}
	}

	groups := groupByDimension(t.recordsView(), d)
	out := make([]domain.CategoryStats, 0, len(groups))
	for _, g := range groups {
		cs := domain.CategoryStats{
			Category:          g.category,
			Rows:              g.rows,
			Volume:            g.volume,
			Value:             g.value,
			WeightedUnitValue: unitValue(g.value, g.volume),
		}
		if vals := unitValues[g.category]; len(vals) > 0 {
			if len(vals) == 1 {
				cs.MeanUnitValue = vals[0]
			} else {
				mean, std := stat.MeanStdDev(vals, nil)
				cs.MeanUnitValue = finiteOrZero(mean)
				cs.StdUnitValue = finiteOrZero(std)
			}
		}
		out = append(out, cs)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeightedUnitValue != out[j].WeightedUnitValue {
			return out[i].WeightedUnitValue > out[j].WeightedUnitValue
		}
		return out[i].Category < out[j].Category
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Concentration reports the true market share of the n largest categories
// of d against the whole table.
func Concentration(t *Table, d domain.Dimension, n int) domain.Concentration {
	groups := groupByDimension(t.recordsView(), d)
	total := totalVolume(groups)

	top := groups
	if n > 0 && n < len(groups) {
		top = groups[:n]
	}

	c := domain.Concentration{
		Dimension:   d,
		TopN:        n,
		TopSharePct: percent(totalVolume(top), total),
		Categories:  len(groups),
	}
	if len(groups) > 0 {
		c.AvgVolumePerCategory = total / float64(len(groups))
	}
	return c
}
