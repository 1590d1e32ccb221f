package dataprocessing

import (
	"time"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// ApplyView projects the table for a view mode. FULL returns t itself. YTD
// keeps, for every year, the months up to and including maxDate's month, so
// partial years compare like for like. A nil maxDate behaves as FULL.
//
// maxDate must come from the full canonical table, never from a filtered one.
func ApplyView(t *Table, maxDate *time.Time, mode domain.ViewMode) *Table {
	if mode != domain.ViewYTD || maxDate == nil {
		return t
	}
	cutoff := int(maxDate.Month())
	return t.Filter(func(r domain.ImportRecord) bool {
		return r.MonthNumber <= cutoff
	})
}
