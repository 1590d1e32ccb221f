package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/shared/testutil"
)

const sampleCSV = "\ufeffFECHA;MARCA;CANTIDAD;VALOR US$ CIF\n" +
	"2024-01-05;TOYOTA;2;\"30.000,50\"\n" +
	"\n" +
	"2024-02-10;KIA;1\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T) (*Loader, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	return NewLoader(logger, Config{MaxDownloadBytes: 1 << 20, HTTPTimeout: 5 * time.Second}), handler
}

func TestSourceResolve(t *testing.T) {
	existing := writeFile(t, "data.csv", "A\n1\n")
	missing := filepath.Join(t.TempDir(), "missing.parquet")

	tests := []struct {
		name    string
		src     Source
		want    Origin
		wantErr error
	}{
		{"upload wins", Source{Upload: &Upload{Name: "x.csv"}, LocalPath: existing, URL: "http://x"}, OriginUpload, nil},
		{"local when present", Source{LocalPath: existing, URL: "http://x"}, OriginLocal, nil},
		{"url when local missing", Source{LocalPath: missing, URL: "http://x"}, OriginURL, nil},
		{"url alone", Source{URL: "http://x"}, OriginURL, nil},
		{"missing local without url", Source{LocalPath: missing}, "", ErrSourceNotFound},
		{"directory is not a file", Source{LocalPath: t.TempDir()}, "", ErrSourceNotFound},
		{"nothing configured", Source{}, "", ErrNoSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.Resolve()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceIdentity(t *testing.T) {
	a := Source{Upload: &Upload{Name: "a.csv", Data: []byte("A\n1\n")}}
	b := Source{Upload: &Upload{Name: "b.csv", Data: []byte("A\n1\n")}}
	c := Source{Upload: &Upload{Name: "a.csv", Data: []byte("A\n2\n")}}

	assert.Equal(t, a.Identity(), b.Identity())
	assert.NotEqual(t, a.Identity(), c.Identity())
	assert.True(t, strings.HasPrefix(a.Identity(), "upload:"))
	assert.Equal(t, "url:http://x/data.parquet", Source{URL: "http://x/data.parquet"}.Identity())
	assert.Empty(t, Source{}.Identity())
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		head []byte
		want Format
	}{
		{"parquet extension", "data.PARQUET", nil, FormatParquet},
		{"xlsx extension", "book.xlsx", nil, FormatXLSX},
		{"tsv extension", "rows.tsv", nil, FormatCSV},
		{"parquet magic", "download", []byte("PAR1\x15\x04"), FormatParquet},
		{"zip magic", "download", []byte("PK\x03\x04\x14\x00"), FormatXLSX},
		{"legacy xls", "download", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, FormatUnknown},
		{"utf-8 text", "download", []byte("AÑO,MARCA\n2024,KIA\n"), FormatCSV},
		{"binary", "download", []byte{0x00, 0x01, 0x02}, FormatUnknown},
		{"empty", "download", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, tt.head))
		})
	}
}

func TestLoadCSV(t *testing.T) {
	l, handler := newTestLoader(t)
	path := writeFile(t, "imports.csv", sampleCSV)

	raw, err := l.Load(context.Background(), Source{LocalPath: path})

	require.NoError(t, err)
	assert.Equal(t, OriginLocal, raw.Origin)
	assert.Equal(t, FormatCSV, raw.Format)
	assert.Equal(t, "imports.csv", raw.Name)
	assert.Equal(t, []string{"FECHA", "MARCA", "CANTIDAD", "VALOR US$ CIF"}, raw.Frame.Names())
	assert.Equal(t, 2, raw.Frame.Nrow())
	assert.Equal(t, "30.000,50", raw.Frame.Col("VALOR US$ CIF").Elem(0).String())
	assert.Equal(t, "", raw.Frame.Col("VALOR US$ CIF").Elem(1).String())

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset read")
	assert.True(t, handler.ContainsAttr("component", "loader"))
}

func TestReadCSVHeaders(t *testing.T) {
	df, err := readCSV(strings.NewReader("MARCA,,MARCA\nKIA,1,2\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"MARCA", "UNNAMED_2", "MARCA_2"}, df.Names())
}

func TestReadCSVTabDelimited(t *testing.T) {
	df, err := readCSV(strings.NewReader("FECHA\tMARCA\n2024-01-01\tKIA\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"FECHA", "MARCA"}, df.Names())
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := readCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imports.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Fecha", "Marca", "Cantidad", "Valor CIF"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{45519, "TOYOTA", 2, 30000.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{45520, "KIA", nil, "n/a"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	l, _ := newTestLoader(t)
	raw, err := l.Load(context.Background(), Source{LocalPath: path})

	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, raw.Format)
	assert.Equal(t, []string{"Fecha", "Marca", "Cantidad", "Valor CIF"}, raw.Frame.Names())
	require.Equal(t, 2, raw.Frame.Nrow())

	assert.Equal(t, series.Float, raw.Frame.Col("Fecha").Type())
	assert.Equal(t, 45519.0, raw.Frame.Col("Fecha").Elem(0).Float())
	assert.Equal(t, series.Float, raw.Frame.Col("Cantidad").Type())
	assert.True(t, raw.Frame.Col("Cantidad").Elem(1).IsNA())
	assert.Equal(t, series.String, raw.Frame.Col("Valor CIF").Type(), "mixed column stays text")
}

type parquetFixture struct {
	Fecha    int32   `parquet:"name=FECHA, type=INT32, convertedtype=DATE"`
	Marca    *string `parquet:"name=MARCA, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Cantidad float64 `parquet:"name=CANTIDAD, type=DOUBLE"`
	Valor    int64   `parquet:"name=VALOR_CIF, type=INT64, convertedtype=DECIMAL, scale=2, precision=18"`
	Anio     int32   `parquet:"name=ANIO, type=INT32"`
}

func writeParquetFixture(t *testing.T, rows []parquetFixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "historial_lite.parquet")

	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(parquetFixture), 1)
	require.NoError(t, err)
	for i := range rows {
		require.NoError(t, pw.Write(rows[i]))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
	return path
}

func daysSinceEpoch(y int, m time.Month, d int) int32 {
	return int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func TestLoadParquet(t *testing.T) {
	toyota := "TOYOTA"
	path := writeParquetFixture(t, []parquetFixture{
		{Fecha: daysSinceEpoch(2024, 8, 15), Marca: &toyota, Cantidad: 3, Valor: 4_500_050, Anio: 2024},
		{Fecha: daysSinceEpoch(2023, 1, 2), Marca: nil, Cantidad: 1, Valor: -150, Anio: 2023},
	})

	l, _ := newTestLoader(t)
	raw, err := l.Load(context.Background(), Source{LocalPath: path})

	require.NoError(t, err)
	assert.Equal(t, FormatParquet, raw.Format)
	assert.Equal(t, []string{"FECHA", "MARCA", "CANTIDAD", "VALOR_CIF", "ANIO"}, raw.Frame.Names())
	require.Equal(t, 2, raw.Frame.Nrow())

	assert.Equal(t, "2024-08-15", raw.Frame.Col("FECHA").Elem(0).String())
	assert.Equal(t, "2023-01-02", raw.Frame.Col("FECHA").Elem(1).String())
	assert.Equal(t, "TOYOTA", raw.Frame.Col("MARCA").Elem(0).String())
	assert.True(t, raw.Frame.Col("MARCA").Elem(1).IsNA())
	assert.InDelta(t, 45000.50, raw.Frame.Col("VALOR_CIF").Elem(0).Float(), 1e-9)
	assert.InDelta(t, -1.50, raw.Frame.Col("VALOR_CIF").Elem(1).Float(), 1e-9)
	assert.Equal(t, series.Float, raw.Frame.Col("ANIO").Type())
}

func TestDecimalFromBytes(t *testing.T) {
	tests := []struct {
		in    []byte
		scale int32
		want  string
	}{
		{[]byte{0x01, 0x00}, 2, "2.56"},
		{[]byte{0xFF, 0x38}, 1, "-20"},
		{nil, 0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decimalFromBytes(tt.in, tt.scale).String())
	}
}

func TestLoadUpload(t *testing.T) {
	l, _ := newTestLoader(t)
	src := Source{
		Upload:    &Upload{Name: "subida.csv", Data: []byte(sampleCSV)},
		LocalPath: writeFile(t, "ignored.csv", "X\n1\n"),
	}

	raw, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, OriginUpload, raw.Origin)
	assert.Equal(t, "subida.csv", raw.Name)
	assert.Equal(t, 2, raw.Frame.Nrow())
}

func TestLoadUploadTooLarge(t *testing.T) {
	l := NewLoader(slog.New(slog.DiscardHandler), Config{MaxDownloadBytes: 8})

	_, err := l.Load(context.Background(), Source{Upload: &Upload{Name: "a.csv", Data: []byte(sampleCSV)}})

	assert.ErrorIs(t, err, ErrSourceTooLarge)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/historial.csv":
			fmt.Fprint(w, sampleCSV)
		case "/export":
			fmt.Fprint(w, "MARCA,CANTIDAD\nKIA,1\n")
		case "/big.csv":
			fmt.Fprint(w, strings.Repeat("x", 2<<20))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		wantFormat Format
		wantRows   int
		wantErr    error
		wantType   apperrors.ErrorType
	}{
		{"csv by extension", "/historial.csv", FormatCSV, 2, nil, ""},
		{"csv by content", "/export", FormatCSV, 1, nil, ""},
		{"not found", "/missing.parquet", "", 0, ErrSourceNotFound, apperrors.ErrTypeNetwork},
		{"too large", "/big.csv", "", 0, ErrSourceTooLarge, apperrors.ErrTypeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLoader(t)
			l.WithHTTPClient(srv.Client())

			raw, err := l.Load(context.Background(), Source{URL: srv.URL + tt.path})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OriginURL, raw.Origin)
			assert.Equal(t, tt.wantFormat, raw.Format)
			assert.Equal(t, tt.wantRows, raw.Frame.Nrow())
		})
	}
}

func TestLoadURLRejectsNonHTTP(t *testing.T) {
	l, _ := newTestLoader(t)

	_, err := l.Load(context.Background(), Source{URL: "ftp://example.com/data.csv"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name     string
		src      func(t *testing.T) Source
		wantErr  error
		wantType apperrors.ErrorType
	}{
		{
			name:     "no source",
			src:      func(t *testing.T) Source { return Source{} },
			wantErr:  ErrNoSource,
			wantType: apperrors.ErrTypeNoData,
		},
		{
			name: "missing local file",
			src: func(t *testing.T) Source {
				return Source{LocalPath: filepath.Join(t.TempDir(), "historial_lite.parquet")}
			},
			wantErr:  ErrSourceNotFound,
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "corrupt parquet",
			src: func(t *testing.T) Source {
				return Source{LocalPath: writeFile(t, "broken.parquet", "PAR1 this is not parquet")}
			},
			wantErr:  ErrMalformedSource,
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name: "corrupt xlsx",
			src: func(t *testing.T) Source {
				return Source{LocalPath: writeFile(t, "broken.xlsx", "not a zip")}
			},
			wantErr:  ErrMalformedSource,
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name: "binary without extension",
			src: func(t *testing.T) Source {
				return Source{LocalPath: writeFile(t, "blob", "\x00\x01\x02\x03")}
			},
			wantErr:  ErrMalformedSource,
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name: "empty csv",
			src: func(t *testing.T) Source {
				return Source{LocalPath: writeFile(t, "empty.csv", "")}
			},
			wantErr:  ErrMalformedSource,
			wantType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLoader(t)

			raw, err := l.Load(context.Background(), tt.src(t))

			assert.Nil(t, raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))

			var appErr *apperrors.AppError
			assert.True(t, errors.As(err, &appErr))
		})
	}
}
