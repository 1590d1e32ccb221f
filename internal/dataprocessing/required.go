package dataprocessing

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CheckRequired reports which RequiredColumns a normalized frame lacks. When
// DATE is missing but YEAR and a month (MONTH_NUMBER, or a MONTH name column)
// exist, a first-of-month DATE column is synthesized before reporting. The
// possibly repaired frame is returned; an empty list means ready to use.
func CheckRequired(frame dataframe.DataFrame) (dataframe.DataFrame, []string) {
	present := make(map[string]bool)
	for _, name := range frame.Names() {
		present[name] = true
	}

	if !present[ColDate] && present[ColYear] && (present[ColMonthNumber] || present[ColMonth]) {
		if repaired, ok := synthesizeDate(frame, present[ColMonthNumber]); ok {
			frame = repaired
			present[ColDate] = true
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return frame, missing
}

func synthesizeDate(frame dataframe.DataFrame, hasMonthNumber bool) (dataframe.DataFrame, bool) {
	years := frame.Col(ColYear)
	monthCol := ColMonth
	if hasMonthNumber {
		monthCol = ColMonthNumber
	}
	months := frame.Col(monthCol)

	dates := make([]interface{}, frame.Nrow())
	for i := range dates {
		year, ok := wholeNumber(years, i)
		if !ok {
			continue
		}
		month, ok := monthValue(months, i)
		if !ok {
			continue
		}
		if t, ok := firstOfMonth(year, month); ok {
			dates[i] = t.Format("2006-01-02")
		}
	}

	repaired := frame.Mutate(series.New(dates, series.String, ColDate))
	if repaired.Err != nil {
		return frame, false
	}
	return repaired, true
}

// wholeNumber reads an integral cell from a typed or text column.
func wholeNumber(s series.Series, i int) (int, bool) {
	e := s.Elem(i)
	if e.IsNA() {
		return 0, false
	}
	var f float64
	switch s.Type() {
	case series.Int, series.Float:
		f = e.Float()
	default:
		f = ParseNumber(e.String())
	}
	if f != float64(int(f)) || f <= 0 {
		return 0, false
	}
	return int(f), true
}

func monthValue(s series.Series, i int) (int, bool) {
	e := s.Elem(i)
	if e.IsNA() {
		return 0, false
	}
	if s.Type() == series.Int || s.Type() == series.Float {
		m := e.Float()
		if m == float64(int(m)) && m >= 1 && m <= 12 {
			return int(m), true
		}
		return 0, false
	}
	return ParseMonth(e.String())
}
