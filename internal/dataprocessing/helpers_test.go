package dataprocessing

import (
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// stringFrame builds a DataFrame of string columns from a header and rows.
func stringFrame(t *testing.T, headers []string, rows ...[]string) dataframe.DataFrame {
	t.Helper()
	cols := make([]series.Series, len(headers))
	for j, h := range headers {
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = r[j]
		}
		cols[j] = series.New(vals, series.String, h)
	}
	df := dataframe.New(cols...)
	require.NoError(t, df.Err)
	return df
}

// rec builds a canonical record dated on the 15th of the month.
func rec(year, month int, brand string, qty, value float64) domain.ImportRecord {
	date := time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
	r := domain.ImportRecord{
		Date:         date,
		Year:         year,
		MonthNumber:  month,
		MonthName:    SpanishMonthName(time.Month(month)),
		Brand:        brand,
		Quantity:     qty,
		CustomsValue: value,
	}
	r.UnitCustomsValue = unitValue(value, qty)
	return r
}

func table(records ...domain.ImportRecord) *Table {
	return NewTable(records, ColBrand, ColQuantity, ColCustomsValue)
}

func datePtr(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}
