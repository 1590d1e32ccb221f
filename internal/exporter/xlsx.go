package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// Sheet names used in exported workbooks.
const (
	SheetData     = "Data"
	SheetMonthly  = "Monthly"
	SheetTopShare = "TopShare"
	SheetYoY      = "YoY"
)

// Workbook holds the tables written to an xlsx export. A nil YoY writes a
// sheet with headers only.
type Workbook struct {
	Table    *dataprocessing.Table
	Monthly  []domain.MonthlyPoint
	TopShare []domain.ShareRow
	YoY      *domain.YoYTable
}

type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// XLSXWriter writes workbooks with excelize.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new xlsx writer instance
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_exporter"))}
}

// Write renders wb as an xlsx document on out.
func (w *XLSXWriter) Write(out io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := wb.sheets()
	if err := f.SetSheetName(f.GetSheetName(0), sheets[0].name); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("exporting workbook",
		slog.String("format", "xlsx"),
		slog.Int("record_count", wb.Table.Len()),
		slog.Int("sheet_count", len(sheets)))

	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}

func (wb Workbook) sheets() []sheet {
	return []sheet{
		dataSheet(wb.Table),
		monthlySheet(wb.Monthly),
		topShareSheet(wb.TopShare),
		yoySheet(wb.YoY),
	}
}

func dataSheet(t *dataprocessing.Table) sheet {
	headers := t.Columns()
	records := t.Records()

	rows := make([][]interface{}, len(records))
	for i, r := range records {
		row := make([]interface{}, len(headers))
		for j, col := range headers {
			v := dataprocessing.Field(r, col)
			if col == dataprocessing.ColDate {
				v = cellString(v)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return sheet{name: SheetData, headers: headers, rows: rows}
}

func monthlySheet(points []domain.MonthlyPoint) sheet {
	rows := make([][]interface{}, len(points))
	for i, p := range points {
		rows[i] = []interface{}{p.Year, p.MonthNumber, formatDate(p.Date), p.Volume}
	}
	return sheet{
		name:    SheetMonthly,
		headers: []string{"YEAR", "MONTH_NUMBER", "DATE", "VOLUME"},
		rows:    rows,
	}
}

func topShareSheet(shares []domain.ShareRow) sheet {
	rows := make([][]interface{}, len(shares))
	for i, s := range shares {
		rows[i] = []interface{}{s.Category, s.Volume, s.SharePct}
	}
	return sheet{
		name:    SheetTopShare,
		headers: []string{"CATEGORY", "VOLUME", "SHARE_PCT"},
		rows:    rows,
	}
}

func yoySheet(t *domain.YoYTable) sheet {
	if t == nil {
		return sheet{name: SheetYoY, headers: yoyHeaders("CATEGORY", "CURRENT", "PREVIOUS")}
	}

	rows := make([][]interface{}, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = []interface{}{
			r.Category,
			r.CurrentVolume, r.CurrentValue, r.CurrentShare,
			r.PreviousVolume, r.PreviousValue, r.PreviousShare,
			r.ShareDeltaPP, r.ValueDelta, string(r.Status),
		}
	}
	headers := yoyHeaders(string(t.Dimension), formatInt(int64(t.CurrentYear)), formatInt(int64(t.PreviousYear)))
	return sheet{name: SheetYoY, headers: headers, rows: rows}
}

func yoyHeaders(category, current, previous string) []string {
	return []string{
		category,
		"VOLUME_" + current, "VALUE_" + current, "SHARE_" + current,
		"VOLUME_" + previous, "VALUE_" + previous, "SHARE_" + previous,
		"SHARE_DELTA_PP", "VALUE_DELTA", "STATUS",
	}
}
