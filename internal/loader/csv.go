package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// delimiters are the candidates sniffed from the header line, in order of
// preference on ties.
var delimiters = []rune{',', ';', '\t', '|'}

// readCSV reads delimited text into string columns. The delimiter is the
// candidate that occurs most often in the first line. Short rows are padded
// with empty cells and extra cells are ignored.
func readCSV(r io.Reader) (dataframe.DataFrame, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	firstLine, err := peekLine(br)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return dataframe.DataFrame{}, errors.New("empty file")
	}
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read header: %w", err)
	}

	columns := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("read record: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		for j := range columns {
			cell := ""
			if j < len(record) {
				cell = record[j]
			}
			columns[j] = append(columns[j], cell)
		}
	}

	return textFrame(header, columns)
}

func peekLine(br *bufio.Reader) (string, error) {
	for size := 512; ; size *= 2 {
		buf, err := br.Peek(size)
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			return string(buf[:i]), nil
		}
		if err != nil {
			if len(buf) == 0 {
				return "", errors.New("empty file")
			}
			return string(buf), nil
		}
	}
}

func sniffDelimiter(line string) rune {
	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// textFrame builds a DataFrame of string columns.
func textFrame(header []string, columns [][]string) (dataframe.DataFrame, error) {
	if len(header) == 0 {
		return dataframe.DataFrame{}, errors.New("no columns")
	}
	names := headerNames(header)
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = series.New(columns[j], series.String, name)
	}
	df := dataframe.New(cols...)
	return df, df.Err
}

// headerNames names blank headers UNNAMED_<n> after their 1-based position
// and suffixes repeated headers with _2, _3, ... so the first occurrence
// keeps its name.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for j, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("UNNAMED_%d", j+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		names[j] = name
	}
	return names
}
