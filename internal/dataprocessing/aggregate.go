package dataprocessing

import (
	"sort"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

type monthKey struct {
	year  int
	month int
}

// Monthly sums quantity per (year, month) in chronological order. Buckets
// that do not form a valid date are dropped.
func Monthly(t *Table) []domain.MonthlyPoint {
	volumes := make(map[monthKey]float64)
	for _, r := range t.recordsView() {
		volumes[monthKey{r.Year, r.MonthNumber}] += r.Quantity
	}

	points := make([]domain.MonthlyPoint, 0, len(volumes))
	for k, v := range volumes {
		date, ok := firstOfMonth(k.year, k.month)
		if !ok {
			continue
		}
		points = append(points, domain.MonthlyPoint{
			Year:        k.year,
			MonthNumber: k.month,
			Volume:      v,
			Date:        date,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// categoryTotals is the volume and value of one category.
type categoryTotals struct {
	category string
	volume   float64
	value    float64
	rows     int
}

// groupByDimension sums quantity and customs value per category, ordered by
// volume descending and then category ascending.
func groupByDimension(records []domain.ImportRecord, d domain.Dimension) []categoryTotals {
	index := make(map[string]int)
	var groups []categoryTotals
	for _, r := range records {
		key := r.Category(d)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, categoryTotals{category: key})
		}
		groups[i].volume += r.Quantity
		groups[i].value += r.CustomsValue
		groups[i].rows++
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].volume != groups[j].volume {
			return groups[i].volume > groups[j].volume
		}
		return groups[i].category < groups[j].category
	})
	return groups
}

// TopShare ranks categories of d by volume and returns the first n (all when
// n <= 0). Shares are percentages of the displayed top-n subtotal, not of the
// whole table, so they always sum to 100 unless the subtotal is 0.
func TopShare(t *Table, d domain.Dimension, n int) []domain.ShareRow {
	groups := groupByDimension(t.recordsView(), d)
	if n > 0 && n < len(groups) {
		groups = groups[:n]
	}

	var subtotal float64
	for _, g := range groups {
		subtotal += g.volume
	}

	rows := make([]domain.ShareRow, len(groups))
	for i, g := range groups {
		rows[i] = domain.ShareRow{
			Category: g.category,
			Volume:   g.volume,
			SharePct: percent(g.volume, subtotal),
		}
	}
	return rows
}

// percent returns part/total*100, or 0 when total is 0.
func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return finiteOrZero(part / total * 100)
}
