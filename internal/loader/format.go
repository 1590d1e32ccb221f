package loader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is a supported source file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatUnknown Format = ""
)

var (
	magicParquet = []byte("PAR1")
	magicZip     = []byte("PK\x03\x04")
	magicOLE     = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// sniffSize is how many leading bytes DetectFormat looks at.
const sniffSize = 4096

// FormatFromName maps a file name or URL path to a format by extension.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".parquet", ".pq":
		return FormatParquet
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	}
	return FormatUnknown
}

// DetectFormat decides the format of a file from its name, falling back to
// the leading bytes. Legacy .xls workbooks and binary content that is not
// parquet or xlsx are reported as FormatUnknown.
func DetectFormat(name string, head []byte) Format {
	if f := FormatFromName(name); f != FormatUnknown {
		return f
	}

	switch {
	case bytes.HasPrefix(head, magicParquet):
		return FormatParquet
	case bytes.HasPrefix(head, magicZip):
		return FormatXLSX
	case bytes.HasPrefix(head, magicOLE):
		return FormatUnknown
	case len(head) > 0 && looksLikeText(head):
		return FormatCSV
	}
	return FormatUnknown
}

// looksLikeText accepts UTF-8 without NUL bytes. A multi-byte rune cut at
// the end of the sample is tolerated.
func looksLikeText(head []byte) bool {
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.Valid(head) {
			return true
		}
		head = head[:len(head)-1]
	}
	return false
}

func detectFileFormat(path, name string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FormatUnknown, err
	}
	return DetectFormat(name, head[:n]), nil
}
