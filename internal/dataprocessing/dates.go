package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Day-first layouts come before month-first
// ones because the source data is Peruvian customs records.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"20060102",
	"01/2006",
	"2006-01",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958466

var spanishMonths = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SETIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// monthNumbers resolves month names in Spanish and English.
var monthNumbers = map[string]int{
	"ENERO": 1, "FEBRERO": 2, "MARZO": 3, "ABRIL": 4, "MAYO": 5, "JUNIO": 6,
	"JULIO": 7, "AGOSTO": 8, "SETIEMBRE": 9, "SEPTIEMBRE": 9, "OCTUBRE": 10,
	"NOVIEMBRE": 11, "DICIEMBRE": 12,
	"JANUARY": 1, "FEBRUARY": 2, "MARCH": 3, "APRIL": 4, "MAY": 5, "JUNE": 6,
	"JULY": 7, "AUGUST": 8, "SEPTEMBER": 9, "OCTOBER": 10, "NOVEMBER": 11,
	"DECEMBER": 12,
	"ENE": 1, "FEB": 2, "MAR": 3, "ABR": 4, "JUN": 6, "JUL": 7, "AGO": 8,
	"SET": 9, "SEP": 9, "OCT": 10, "NOV": 11, "DIC": 12,
	"JAN": 1, "APR": 4, "AUG": 8, "DEC": 12,
}

// SpanishMonthName returns the upper-case Spanish name for month m, or "" when
// m is out of range.
func SpanishMonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return spanishMonths[m-1]
}

// ParseMonth reads a month given as a number or a Spanish/English name.
func ParseMonth(raw string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	if n, ok := monthNumbers[s]; ok {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) && f >= 1 && f <= 12 {
		return int(f), true
	}
	return 0, false
}

// ParseDate reads a date in any of the supported layouts or as an Excel
// serial number. The result is truncated to its calendar day in UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDay(t), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelSerialDate(serial)
	}
	return time.Time{}, false
}

func excelSerialDate(serial float64) (time.Time, bool) {
	if serial < 1 || serial >= maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDay(t), true
}

// calendarDay keeps the date as written and drops the clock and zone.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(year, month int) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}
