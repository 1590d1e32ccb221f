package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to out
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes the canonical table with a BOM, one column per present
// canonical column in canonical order.
func (w *CSVWriter) WriteTable(out io.Writer, t *dataprocessing.Table) error {
	headers, records := TableRecords(t)

	w.logger.Info("exporting table",
		slog.String("format", "csv"),
		slog.Int("record_count", len(records)),
		slog.Int("column_count", len(headers)))

	return w.WriteCSV(out, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteTableCSV writes t to out using a writer with the default logger.
func WriteTableCSV(out io.Writer, t *dataprocessing.Table) error {
	return NewCSVWriter(nil).WriteTable(out, t)
}

// TableRecords renders the table as a header row and string records.
func TableRecords(t *dataprocessing.Table) ([]string, [][]string) {
	headers := t.Columns()
	rows := t.Records()

	records := make([][]string, len(rows))
	for i, r := range rows {
		record := make([]string, len(headers))
		for j, col := range headers {
			record[j] = cellString(dataprocessing.Field(r, col))
		}
		records[i] = record
	}
	return headers, records
}

func cellString(v any) string {
	switch val := v.(type) {
	case time.Time:
		return formatDate(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatNumber(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// WriteFile creates path and its directory and hands the file to write.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
