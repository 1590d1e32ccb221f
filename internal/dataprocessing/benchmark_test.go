package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

func TestUnitValueStats(t *testing.T) {
	tbl := table(
		rec(2024, 1, "A", 1, 10),
		rec(2024, 1, "A", 2, 40),
		rec(2024, 1, "B", 1, 30),
		rec(2024, 1, "B", 1, 40),
		rec(2024, 1, "C", 0, 999),
	)

	got := UnitValueStats(tbl)

	assert.Equal(t, domain.PriceStats{Count: 4, Min: 10, Median: 25, Max: 40, Mean: 25}, got)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{3}, 3},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		in := append([]float64(nil), tt.in...)
		assert.Equal(t, tt.want, median(tt.in))
		assert.Equal(t, in, tt.in, "input is not reordered")
	}
}

func TestCategoryStats(t *testing.T) {
	tbl := table(
		rec(2024, 1, "A", 2, 100),
		rec(2024, 1, "A", 2, 300),
		rec(2024, 1, "B", 1, 500),
		rec(2024, 1, "C", 0, 0),
	)

	got := CategoryStats(tbl, domain.DimensionBrand, 0)

	require.Len(t, got, 3)
	assert.Equal(t, domain.CategoryStats{
		Category: "B", Rows: 1, Volume: 1, Value: 500,
		WeightedUnitValue: 500, MeanUnitValue: 500,
	}, got[0])

	a := got[1]
	assert.Equal(t, "A", a.Category)
	assert.Equal(t, 100.0, a.WeightedUnitValue)
	assert.Equal(t, 100.0, a.MeanUnitValue)
	assert.InDelta(t, 50*math.Sqrt2, a.StdUnitValue, 1e-9)

	assert.Equal(t, "C", got[2].Category)
	assert.Zero(t, got[2].WeightedUnitValue)

	assert.Len(t, CategoryStats(tbl, domain.DimensionBrand, 2), 2)
}

func TestConcentration(t *testing.T) {
	tbl := table(
		rec(2024, 1, "A", 50, 0),
		rec(2024, 1, "B", 30, 0),
		rec(2024, 1, "C", 15, 0),
		rec(2024, 1, "D", 5, 0),
	)

	got := Concentration(tbl, domain.DimensionBrand, 2)

	assert.Equal(t, domain.Concentration{
		Dimension:            domain.DimensionBrand,
		TopN:                 2,
		TopSharePct:          80,
		Categories:           4,
		AvgVolumePerCategory: 25,
	}, got)

	assert.Equal(t, 100.0, Concentration(tbl, domain.DimensionBrand, 10).TopSharePct)
	assert.Zero(t, Concentration(table(), domain.DimensionBrand, 3).TopSharePct)
}
