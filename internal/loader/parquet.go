package loader

import (
	"fmt"
	"math/big"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/types"
)

// parquetReadParallelism is the number of goroutines parquet-go uses per
// column read.
const parquetReadParallelism = 4

// readParquet reads every leaf column of a flat parquet file. Numeric
// physical types become float columns; DATE and TIMESTAMP columns become
// ISO dates; DECIMAL columns are scaled. Repeated or nested columns are
// rejected.
func readParquet(path string) (df dataframe.DataFrame, err error) {
	defer func() {
		if r := recover(); r != nil {
			df, err = dataframe.DataFrame{}, fmt.Errorf("corrupt parquet file: %v", r)
		}
	}()

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, parquetReadParallelism)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	leaves := leafElements(pr.Footer.Schema)
	if len(leaves) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("parquet schema has no columns")
	}

	header := make([]string, len(leaves))
	for i, el := range leaves {
		header[i] = el.GetName()
	}
	names := headerNames(header)

	cols := make([]series.Series, len(leaves))
	for i, el := range leaves {
		values, _, _, err := pr.ReadColumnByIndex(int64(i), numRows)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("read column %q: %w", el.GetName(), err)
		}
		if int64(len(values)) != numRows {
			return dataframe.DataFrame{}, fmt.Errorf("column %q is repeated or nested", el.GetName())
		}
		cols[i] = parquetColumn(el, values, names[i])
	}

	df = dataframe.New(cols...)
	return df, df.Err
}

// leafElements returns the schema elements that hold values, skipping the
// root and group nodes.
func leafElements(schema []*parquet.SchemaElement) []*parquet.SchemaElement {
	var leaves []*parquet.SchemaElement
	for i, el := range schema {
		if i == 0 || el.GetNumChildren() > 0 {
			continue
		}
		leaves = append(leaves, el)
	}
	return leaves
}

type columnKind int

const (
	kindText columnKind = iota
	kindNumber
	kindDate
)

func parquetColumn(el *parquet.SchemaElement, values []interface{}, name string) series.Series {
	out := make([]interface{}, len(values))
	kind := kindOf(el)

	for i, v := range values {
		if v == nil {
			continue
		}
		switch kind {
		case kindNumber:
			if f, ok := parquetNumber(el, v); ok {
				out[i] = f
			}
		case kindDate:
			if t, ok := parquetTime(el, v); ok {
				out[i] = t.Format("2006-01-02")
			}
		default:
			out[i] = fmt.Sprint(v)
		}
	}

	if kind == kindNumber {
		return series.New(out, series.Float, name)
	}
	return series.New(out, series.String, name)
}

func kindOf(el *parquet.SchemaElement) columnKind {
	if isTemporal(el) {
		return kindDate
	}
	if isDecimal(el) {
		return kindNumber
	}
	switch el.GetType() {
	case parquet.Type_INT32, parquet.Type_INT64, parquet.Type_FLOAT, parquet.Type_DOUBLE:
		return kindNumber
	case parquet.Type_INT96:
		return kindDate
	}
	return kindText
}

func isTemporal(el *parquet.SchemaElement) bool {
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_DATE, parquet.ConvertedType_TIMESTAMP_MILLIS, parquet.ConvertedType_TIMESTAMP_MICROS:
			return true
		}
	}
	lt := el.GetLogicalType()
	return lt != nil && (lt.IsSetDATE() || lt.IsSetTIMESTAMP())
}

func isDecimal(el *parquet.SchemaElement) bool {
	if el.IsSetConvertedType() && el.GetConvertedType() == parquet.ConvertedType_DECIMAL {
		return true
	}
	lt := el.GetLogicalType()
	return lt != nil && lt.IsSetDECIMAL()
}

func decimalScale(el *parquet.SchemaElement) int32 {
	if el.IsSetScale() {
		return el.GetScale()
	}
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetDECIMAL() {
		return lt.GetDECIMAL().GetScale()
	}
	return 0
}

func parquetNumber(el *parquet.SchemaElement, v interface{}) (float64, bool) {
	if isDecimal(el) {
		scale := decimalScale(el)
		var d decimal.Decimal
		switch n := v.(type) {
		case int32:
			d = decimal.New(int64(n), -scale)
		case int64:
			d = decimal.New(n, -scale)
		case string:
			d = decimalFromBytes([]byte(n), scale)
		default:
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	}

	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// decimalFromBytes reads a big-endian two's complement unscaled value.
func decimalFromBytes(b []byte, scale int32) decimal.Decimal {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return decimal.NewFromBigInt(n, -scale)
}

func parquetTime(el *parquet.SchemaElement, v interface{}) (time.Time, bool) {
	switch n := v.(type) {
	case string:
		if el.GetType() == parquet.Type_INT96 {
			return types.INT96ToTime(n).UTC(), true
		}
	case int32:
		return time.Unix(int64(n)*86400, 0).UTC(), true
	case int64:
		return time.Unix(0, int64(timestampUnit(el))*n).UTC(), true
	}
	return time.Time{}, false
}

func timestampUnit(el *parquet.SchemaElement) time.Duration {
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return time.Millisecond
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return time.Microsecond
		}
	}
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetTIMESTAMP() {
		unit := lt.GetTIMESTAMP().GetUnit()
		switch {
		case unit.IsSetMILLIS():
			return time.Millisecond
		case unit.IsSetMICROS():
			return time.Microsecond
		}
		return time.Nanosecond
	}
	return time.Millisecond
}
