package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// threeYears holds every month of 2022 and 2023 and January to August 2024.
func threeYears() *Table {
	var records []domain.ImportRecord
	for year := 2022; year <= 2024; year++ {
		last := 12
		if year == 2024 {
			last = 8
		}
		for month := 1; month <= last; month++ {
			records = append(records, rec(year, month, "KIA", 10, 1000))
		}
	}
	return table(records...)
}

func TestApplyView(t *testing.T) {
	full := threeYears()
	maxDate := datePtr(2024, 8, 15)

	tests := []struct {
		name     string
		mode     domain.ViewMode
		maxDate  bool
		wantRows int
	}{
		{"full keeps everything", domain.ViewFull, true, 32},
		{"ytd cuts every year at august", domain.ViewYTD, true, 24},
		{"ytd without a max date is full", domain.ViewYTD, false, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := maxDate
			if !tt.maxDate {
				md = nil
			}
			view := ApplyView(full, md, tt.mode)
			assert.Equal(t, tt.wantRows, view.Len())
		})
	}
}

func TestApplyViewYTDIsSubsetOfFull(t *testing.T) {
	full := threeYears()
	ytd := ApplyView(full, datePtr(2024, 8, 15), domain.ViewYTD)

	inFull := make(map[domain.ImportRecord]bool)
	for _, r := range full.Records() {
		inFull[r] = true
	}
	for _, r := range ytd.Records() {
		assert.True(t, inFull[r])
		assert.LessOrEqual(t, r.MonthNumber, 8)
	}
	assert.Equal(t, []int{2022, 2023, 2024}, ytd.Years())
}

func TestApplyViewFullReturnsSameTable(t *testing.T) {
	full := threeYears()
	assert.Same(t, full, ApplyView(full, datePtr(2024, 8, 15), domain.ViewFull))
}

func TestApplyViewYTDCutsLaterMonthsOfTheCurrentYear(t *testing.T) {
	var records []domain.ImportRecord
	for year := 2022; year <= 2024; year++ {
		for month := 1; month <= 12; month++ {
			records = append(records, rec(year, month, "KIA", 10, 1000))
		}
	}
	full := table(records...)

	ytd := ApplyView(full, datePtr(2024, 8, 15), domain.ViewYTD)

	assert.Equal(t, 24, ytd.Len())
	perYear := make(map[int]int)
	for _, r := range ytd.Records() {
		assert.LessOrEqual(t, r.MonthNumber, 8, "%d-%02d survived the cut", r.Year, r.MonthNumber)
		perYear[r.Year]++
	}
	assert.Equal(t, map[int]int{2022: 8, 2023: 8, 2024: 8}, perYear)
}
