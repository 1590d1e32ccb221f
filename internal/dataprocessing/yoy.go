package dataprocessing

import (
	"slices"
	"sort"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// YoY compares the latest selected year with the year before it on
// dimension d.
//
// It returns nil when fewer than two distinct years are selected, and when
// both year slices are empty. The current year is max(years) taken from the
// windowed table. The previous year is always current-1, taken from the full
// unwindowed table whether or not it was selected. Each side's share is
// relative to its own total volume. Categories seen on only one side appear
// with zeros on the other. Rows are ordered by current volume descending,
// then previous volume descending, then category.
func YoY(full, windowed *Table, d domain.Dimension, years []int) *domain.YoYTable {
	distinct := make(map[int]bool, len(years))
	for _, y := range years {
		distinct[y] = true
	}
	if len(distinct) < 2 {
		return nil
	}
	current := slices.Max(years)
	previous := current - 1

	currentSlice := windowed.FilterYears([]int{current})
	previousSlice := full.FilterYears([]int{previous})
	if currentSlice.Len() == 0 && previousSlice.Len() == 0 {
		return nil
	}

	cur := groupByDimension(currentSlice.recordsView(), d)
	prev := groupByDimension(previousSlice.recordsView(), d)
	curTotal := totalVolume(cur)
	prevTotal := totalVolume(prev)

	rows := make(map[string]*domain.YoYRow, len(cur)+len(prev))
	rowFor := func(category string) *domain.YoYRow {
		row, ok := rows[category]
		if !ok {
			row = &domain.YoYRow{Category: category}
			rows[category] = row
		}
		return row
	}

	for _, g := range cur {
		row := rowFor(g.category)
		row.CurrentVolume = g.volume
		row.CurrentValue = g.value
		row.CurrentShare = percent(g.volume, curTotal)
	}
	for _, g := range prev {
		row := rowFor(g.category)
		row.PreviousVolume = g.volume
		row.PreviousValue = g.value
		row.PreviousShare = percent(g.volume, prevTotal)
	}

	out := make([]domain.YoYRow, 0, len(rows))
	for _, row := range rows {
		row.ShareDeltaPP = row.CurrentShare - row.PreviousShare
		row.ValueDelta = row.CurrentValue - row.PreviousValue
		row.Status = domain.YoYGained
		if row.ShareDeltaPP < 0 {
			row.Status = domain.YoYLost
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentVolume != out[j].CurrentVolume {
			return out[i].CurrentVolume > out[j].CurrentVolume
		}
		if out[i].PreviousVolume != out[j].PreviousVolume {
			return out[i].PreviousVolume > out[j].PreviousVolume
		}
		return out[i].Category < out[j].Category
	})

	return &domain.YoYTable{
		Dimension:    d,
		CurrentYear:  current,
		PreviousYear: previous,
		Rows:         out,
	}
}

func totalVolume(groups []categoryTotals) float64 {
	var total float64
	for _, g := range groups {
		total += g.volume
	}
	return total
}
