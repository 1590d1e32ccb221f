package dataprocessing

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currencyMarkers are removed before parsing. Longer markers come first so
// "US$" is not left as "US".
var currencyMarkers = []string{"U$S", "US$", "USD", "PEN", "EUR", "S/.", "S/", "€", "£", "$"}

var numericBody = regexp.MustCompile(`^[+-]?[0-9.,]+$`)

// ParseNumber reads a free-text number. It never fails: anything it cannot
// read is 0.
//
// Separator policy:
//   - both '.' and ',' present: the right-most one is the decimal mark
//   - one kind repeated: grouping ("1.234.567")
//   - one kind once: grouping only when exactly three digits follow and the
//     integer part is 1 to 3 digits other than "0" ("12.345" is 12345,
//     "0.125" and "1234.567" stay fractional); otherwise the decimal mark
//
// Accounting parentheses negate. The result may be negative; callers decide
// whether a negative value is clamped or rejected.
func ParseNumber(raw string) float64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u00a0' || r == '\'' {
			return -1
		}
		return r
	}, s)

	if !numericBody.MatchString(s) {
		return 0
	}

	switch s[0] {
	case '-':
		negative = !negative
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = normalizeSeparators(s)
	if strings.Trim(s, ".") == "" {
		return 0
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if negative {
		return -f
	}
	return f
}

// normalizeSeparators rewrites s (digits, '.' and ',' only) so that the only
// remaining separator is a single '.' decimal mark.
func normalizeSeparators(s string) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return keepLast(strings.ReplaceAll(s, ",", ""), ".")
		}
		s = keepLast(strings.ReplaceAll(s, ".", ""), ",")
		return strings.Replace(s, ",", ".", 1)
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots == 1:
		return singleSeparator(s, ".")
	case commas == 1:
		return singleSeparator(s, ",")
	}
	return s
}

func singleSeparator(s, sep string) string {
	idx := strings.Index(s, sep)
	intPart, frac := s[:idx], s[idx+1:]

	if len(frac) == 3 && len(intPart) >= 1 && len(intPart) <= 3 && intPart != "0" {
		return intPart + frac
	}
	if intPart == "" {
		intPart = "0"
	}
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

// keepLast removes every occurrence of sep except the last one.
func keepLast(s, sep string) string {
	last := strings.LastIndex(s, sep)
	if last < 0 {
		return s
	}
	return strings.ReplaceAll(s[:last], sep, "") + s[last:]
}

// finiteOrZero maps NaN and ±Inf to 0.
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
