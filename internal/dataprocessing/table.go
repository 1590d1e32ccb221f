package dataprocessing

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// CleanStats records what the cleaner removed.
type CleanStats struct {
	InputRows        int `json:"input_rows"`
	InvalidDates     int `json:"invalid_dates"`
	NegativeQuantity int `json:"negative_quantity"`
	Duplicates       int `json:"duplicates"`
	OutputRows       int `json:"output_rows"`
}

// Table is the canonical dataset. It is never modified after construction;
// every filter returns a new Table and Records hands out a copy.
type Table struct {
	records []domain.ImportRecord
	columns map[string]bool
	missing []string
	stats   CleanStats
}

// NewTable builds a table from already canonical records. columns names the
// canonical source columns that are present; derived columns are always added.
func NewTable(records []domain.ImportRecord, columns ...string) *Table {
	present := make(map[string]bool, len(columns)+len(derivedColumns))
	for _, c := range derivedColumns {
		present[c] = true
	}
	for _, c := range columns {
		if isCanonical(c) {
			present[c] = true
		}
	}

	owned := make([]domain.ImportRecord, len(records))
	copy(owned, records)

	return &Table{
		records: owned,
		columns: present,
		stats:   CleanStats{InputRows: len(records), OutputRows: len(records)},
	}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the records.
func (t *Table) Records() []domain.ImportRecord {
	if t == nil {
		return nil
	}
	out := make([]domain.ImportRecord, len(t.records))
	copy(out, t.records)
	return out
}

// HasColumn reports whether a canonical column is present.
func (t *Table) HasColumn(name string) bool {
	return t != nil && t.columns[name]
}

// Columns lists the present canonical columns in canonical order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.columns))
	for _, c := range CanonicalColumns {
		if t.columns[c] {
			out = append(out, c)
		}
	}
	return out
}

// Missing lists required columns that were absent from the source.
func (t *Table) Missing() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.missing))
	copy(out, t.missing)
	return out
}

// Stats returns the cleaning statistics.
func (t *Table) Stats() CleanStats {
	if t == nil {
		return CleanStats{}
	}
	return t.stats
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := make(map[int]bool)
	for _, r := range t.recordsView() {
		seen[r.Year] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Distinct returns the distinct values of a dimension in ascending order.
func (t *Table) Distinct(d domain.Dimension) []string {
	seen := make(map[string]bool)
	for _, r := range t.recordsView() {
		seen[r.Category(d)] = true
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter returns a new table holding the records for which keep is true.
func (t *Table) Filter(keep func(domain.ImportRecord) bool) *Table {
	if t == nil {
		return nil
	}
	kept := make([]domain.ImportRecord, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return t.derive(kept)
}

// FilterYears keeps the records whose year is in years. An empty selection
// keeps everything.
func (t *Table) FilterYears(years []int) *Table {
	if len(years) == 0 {
		return t
	}
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}
	return t.Filter(func(r domain.ImportRecord) bool { return want[r.Year] })
}

// FilterCategory keeps the records whose dimension value equals value.
func (t *Table) FilterCategory(d domain.Dimension, value string) *Table {
	return t.Filter(func(r domain.ImportRecord) bool { return r.Category(d) == value })
}

// Frame renders the table back to a DataFrame with canonical columns, so
// that cleaning the result reproduces the same table.
func (t *Table) Frame() dataframe.DataFrame {
	records := t.recordsView()
	n := len(records)
	cols := make([]series.Series, 0, len(CanonicalColumns))

	for _, name := range t.Columns() {
		switch name {
		case ColDate:
			vals := make([]string, n)
			for i, r := range records {
				vals[i] = r.Date.Format("2006-01-02")
			}
			cols = append(cols, series.New(vals, series.String, name))
		case ColYear, ColMonthNumber:
			vals := make([]int, n)
			for i, r := range records {
				if name == ColYear {
					vals[i] = r.Year
				} else {
					vals[i] = r.MonthNumber
				}
			}
			cols = append(cols, series.New(vals, series.Int, name))
		case ColQuantity, ColCustomsValue, ColFreightValue, ColUnitCustomsValue, ColUnitFreightValue:
			vals := make([]float64, n)
			for i, r := range records {
				vals[i] = numericField(r, name)
			}
			cols = append(cols, series.New(vals, series.Float, name))
		default:
			vals := make([]string, n)
			for i, r := range records {
				vals[i] = textField(r, name)
			}
			cols = append(cols, series.New(vals, series.String, name))
		}
	}
	return dataframe.New(cols...)
}

func (t *Table) derive(records []domain.ImportRecord) *Table {
	return &Table{
		records: records,
		columns: t.columns,
		missing: t.missing,
		stats:   t.stats,
	}
}

// recordsView exposes the backing slice to package code that only reads it.
func (t *Table) recordsView() []domain.ImportRecord {
	if t == nil {
		return nil
	}
	return t.records
}

func numericField(r domain.ImportRecord, name string) float64 {
	switch name {
	case ColQuantity:
		return r.Quantity
	case ColCustomsValue:
		return r.CustomsValue
	case ColFreightValue:
		return r.FreightValue
	case ColUnitCustomsValue:
		return r.UnitCustomsValue
	case ColUnitFreightValue:
		return r.UnitFreightValue
	}
	return 0
}

func textField(r domain.ImportRecord, name string) string {
	switch name {
	case ColMonth:
		return r.MonthName
	case ColBrand:
		return r.Brand
	case ColModel:
		return r.Model
	case ColImporter:
		return r.Importer
	case ColFuelType:
		return r.FuelType
	case ColBodyStyle:
		return r.BodyStyle
	}
	return ""
}

// Field returns a record's value for a canonical column: time.Time for DATE,
// int for YEAR and MONTH_NUMBER, float64 for measures and string otherwise.
func Field(r domain.ImportRecord, column string) any {
	switch column {
	case ColDate:
		return r.Date
	case ColYear:
		return r.Year
	case ColMonthNumber:
		return r.MonthNumber
	case ColQuantity, ColCustomsValue, ColFreightValue, ColUnitCustomsValue, ColUnitFreightValue:
		return numericField(r, column)
	}
	return textField(r, column)
}
