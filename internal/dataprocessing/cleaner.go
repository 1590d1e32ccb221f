package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// CleanerConfig holds configuration options for the Cleaner.
type CleanerConfig struct {
	// DropDuplicates removes rows whose raw cells repeat an earlier row.
	// Rows that only become equal through alias correction, case folding or
	// number parsing are kept.
	DropDuplicates bool
}

// DefaultCleanerConfig returns the configuration used by Clean. Duplicate
// removal is off so cleaning a cleaned table changes nothing.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{}
}

// Cleaner turns a raw DataFrame into a canonical Table.
type Cleaner struct {
	logger *slog.Logger
	config CleanerConfig
}

// NewCleaner creates a cleaner. A nil logger uses slog.Default.
func NewCleaner(logger *slog.Logger, config CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		config: config,
	}
}

// Clean runs the default cleaner without logging context.
func Clean(raw dataframe.DataFrame) (*Table, *time.Time) {
	return NewCleaner(nil, DefaultCleanerConfig()).Clean(context.Background(), raw)
}

// frameColumns caches the series of the canonical columns present in a frame.
type frameColumns map[string]series.Series

func (fc frameColumns) text(name string, i int) string {
	s, ok := fc[name]
	if !ok {
		return ""
	}
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(e.String()))
}

func (fc frameColumns) number(name string, i int) float64 {
	s, ok := fc[name]
	if !ok {
		return 0
	}
	e := s.Elem(i)
	if e.IsNA() {
		return 0
	}
	switch s.Type() {
	case series.Float, series.Int:
		return finiteOrZero(e.Float())
	default:
		return ParseNumber(e.String())
	}
}

// rawKey joins every cell of row i as read from the source.
func rawKey(frame dataframe.DataFrame, names []string, i int) string {
	var b strings.Builder
	for j, name := range names {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		e := frame.Col(name).Elem(i)
		if !e.IsNA() {
			b.WriteString(e.String())
		}
	}
	return b.String()
}

func (fc frameColumns) date(i int) (time.Time, bool) {
	s, ok := fc[ColDate]
	if !ok {
		return time.Time{}, false
	}
	e := s.Elem(i)
	if e.IsNA() {
		return time.Time{}, false
	}
	switch s.Type() {
	case series.Float, series.Int:
		return excelSerialDate(e.Float())
	default:
		return ParseDate(e.String())
	}
}

// Clean normalizes raw, coerces every cell and returns the canonical table
// with its maximum observed date (nil when no row has a valid date). It never
// fails on cell values: bad numbers become 0, bad dates and negative
// quantities drop the row.
func (c *Cleaner) Clean(ctx context.Context, raw dataframe.DataFrame) (*Table, *time.Time) {
	frame := Normalize(raw)
	frame, missing := CheckRequired(frame)

	cols := make(frameColumns)
	present := make(map[string]bool, len(derivedColumns))
	for _, d := range derivedColumns {
		present[d] = true
	}
	for _, name := range frame.Names() {
		if isCanonical(name) {
			cols[name] = frame.Col(name)
			present[name] = true
		}
	}
	_, hasMonthName := cols[ColMonth]

	n := frame.Nrow()
	stats := CleanStats{InputRows: n}
	records := make([]domain.ImportRecord, 0, n)
	var seen map[string]struct{}
	names := raw.Names()
	if c.config.DropDuplicates && raw.Err == nil {
		seen = make(map[string]struct{}, n)
	}
	var maxDate time.Time

	for i := 0; i < n; i++ {
		if seen != nil {
			key := rawKey(raw, names, i)
			if _, dup := seen[key]; dup {
				stats.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		date, ok := cols.date(i)
		if !ok {
			stats.InvalidDates++
			continue
		}

		quantity := cols.number(ColQuantity, i)
		if quantity < 0 {
			stats.NegativeQuantity++
			continue
		}

		rec := domain.ImportRecord{
			Date:         date,
			Year:         date.Year(),
			MonthNumber:  int(date.Month()),
			Brand:        CanonicalBrand(cols.text(ColBrand, i)),
			Model:        cols.text(ColModel, i),
			Importer:     cols.text(ColImporter, i),
			FuelType:     cols.text(ColFuelType, i),
			BodyStyle:    cols.text(ColBodyStyle, i),
			Quantity:     quantity,
			CustomsValue: nonNegative(cols.number(ColCustomsValue, i)),
			FreightValue: nonNegative(cols.number(ColFreightValue, i)),
		}
		if hasMonthName {
			rec.MonthName = cols.text(ColMonth, i)
		} else {
			rec.MonthName = SpanishMonthName(date.Month())
		}
		rec.UnitCustomsValue = unitValue(rec.CustomsValue, rec.Quantity)
		rec.UnitFreightValue = unitValue(rec.FreightValue, rec.Quantity)

		if date.After(maxDate) {
			maxDate = date
		}
		records = append(records, rec)
	}
	stats.OutputRows = len(records)

	table := &Table{
		records: records,
		columns: present,
		missing: missing,
		stats:   stats,
	}

	c.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("invalid_dates", stats.InvalidDates),
		slog.Int("negative_quantity", stats.NegativeQuantity),
		slog.Int("duplicates", stats.Duplicates))

	if len(missing) > 0 {
		c.logger.WarnContext(ctx, "required columns missing",
			slog.Any("missing", missing))
	}

	if len(records) == 0 {
		return table, nil
	}
	return table, &maxDate
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// unitValue divides with a zero guard; the result is always finite.
func unitValue(value, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return finiteOrZero(value / quantity)
}
