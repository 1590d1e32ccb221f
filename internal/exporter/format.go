package exporter

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatNumber formats a value with the fewest digits that round-trip
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// HumanMoney formats a dollar amount for display: billions and millions
// with two decimals and a B or M suffix, smaller amounts as grouped whole
// dollars.
func HumanMoney(x float64) string {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return "$" + strconv.FormatFloat(x, 'f', -1, 64)
	case math.Abs(x) >= 1e9:
		return printer.Sprintf("$%.2f B", x/1e9)
	case math.Abs(x) >= 1e6:
		return printer.Sprintf("$%.2f M", x/1e6)
	default:
		return printer.Sprintf("$%.0f", x)
	}
}

// FormatUnits formats a volume as grouped whole units.
func FormatUnits(v float64) string {
	return printer.Sprintf("%.0f", v)
}
