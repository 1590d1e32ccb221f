package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first worksheet of a workbook. The first non-empty row
// is the header. Cells are read raw, so dates stay Excel serial numbers; a
// column whose non-empty cells are all numeric becomes a float column.
func readXLSX(path string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	start := 0
	for start < len(rows) && isBlankRecord(rows[start]) {
		start++
	}
	if start == len(rows) {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := rows[start]
	columns := make([][]string, len(header))
	for _, row := range rows[start+1:] {
		if isBlankRecord(row) {
			continue
		}
		for j := range columns {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			columns[j] = append(columns[j], cell)
		}
	}

	names := headerNames(header)
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = sheetColumn(columns[j], name)
	}
	df := dataframe.New(cols...)
	return df, df.Err
}

// sheetColumn types a column as float when every non-empty cell parses as a
// number. Empty cells in a float column are NA.
func sheetColumn(cells []string, name string) series.Series {
	values := make([]interface{}, len(cells))
	numeric, nonEmpty := true, 0
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = f
	}

	if !numeric || nonEmpty == 0 {
		return series.New(cells, series.String, name)
	}
	return series.New(values, series.Float, name)
}
