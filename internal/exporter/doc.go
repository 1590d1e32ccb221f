// Package exporter writes the canonical import table and its aggregation
// tables to files users download.
//
// CSVWriter produces UTF-8 CSV with an optional byte order mark so that
// spreadsheet applications detect the encoding. XLSXWriter produces a
// workbook with one sheet per table:
//
//	Data      canonical records
//	Monthly   volume per (year, month)
//	TopShare  top categories and their share of volume
//	YoY       year-over-year comparison
//
// HumanMoney and FormatUnits render amounts the way the executive report
// prints them.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteTable(out, table)
//
//	err = exporter.WriteFile("out/market.xlsx", func(f io.Writer) error {
//		return exporter.NewXLSXWriter(logger).Write(f, exporter.Workbook{Table: table})
//	})
package exporter
