package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
)

const fixture = `FECHA;MARCA;MODELO;EMPRESA;CANTIDAD;VALOR US$ CIF
2023-01-10;TOYOTA;HILUX;TOYOTA DEL PERU;10;200000
2023-02-10;BYD;SONG;BYD PERU;5;150000
2024-01-12;TOYOTA;HILUX;TOYOTA DEL PERU;8;170000
2024-02-14;BYD;SONG;BYD PERU;12;360000
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "importaciones.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MARKET_REPORT_CHART", "false")
	t.Setenv("MARKET_DATA_URL", "")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	data := writeFixture(t)

	out, err := runCLI(t, "summary", "--data", data, "--years", "2024")

	require.NoError(t, err)
	assert.Contains(t, out, "Vista temporal:")
	assert.Contains(t, out, "Full Year")
	assert.Contains(t, out, "20 unidades")
	assert.Contains(t, out, "$530,000")
	assert.Contains(t, out, "Ranking por")
}

func TestYoYCommand(t *testing.T) {
	data := writeFixture(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "two years",
			args:     []string{"yoy", "--data", data, "--years", "2023,2024"},
			contains: []string{"BRAND", "2023", "2024", "TOYOTA", "BYD", "gained", "lost"},
		},
		{
			name:     "single year",
			args:     []string{"yoy", "--data", data, "--years", "2024"},
			contains: []string{"Select at least two years"},
		},
		{
			name:     "years without rows",
			args:     []string{"yoy", "--data", data, "--years", "2030,2031"},
			contains: []string{"No imports recorded for the selected years"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	data := writeFixture(t)
	dir := t.TempDir()

	tests := []struct {
		format string
		magic  string
	}{
		{"csv", "\ufeff"},
		{"xlsx", "PK"},
		{"pdf", "%PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			target := filepath.Join(dir, "mercado."+tt.format)

			out, err := runCLI(t, "export", "--data", data, "--format", tt.format, "--out", target)

			require.NoError(t, err)
			assert.Contains(t, out, "Wrote "+target)
			content, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(content, []byte(tt.magic)))
		})
	}
}

func TestReportCommand(t *testing.T) {
	data := writeFixture(t)
	target := filepath.Join(t.TempDir(), "reporte.pdf")

	_, err := runCLI(t, "report", "--data", data, "--brand", "byd", "--out", target)

	require.NoError(t, err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestCommandErrors(t *testing.T) {
	data := writeFixture(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		file string
	}{
		{"unknown format", []string{"export", "--data", data, "--format", "docx", "--out", filepath.Join(dir, "a.docx")}, filepath.Join(dir, "a.docx")},
		{"bad mode", []string{"summary", "--data", data, "--mode", "weekly"}, ""},
		{"bad dimension", []string{"summary", "--data", data, "--dimension", "color"}, ""},
		{"missing dataset", []string{"summary", "--data", filepath.Join(dir, "nope.parquet")}, ""},
		{"extension mismatch", []string{"export", "--data", data, "--format", "xlsx", "--out", filepath.Join(dir, "c.csv")}, filepath.Join(dir, "c.csv")},
		{"unknown brand", []string{"export", "--data", data, "--brand", "LADA", "--out", filepath.Join(dir, "b.csv")}, filepath.Join(dir, "b.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
			if tt.file != "" {
				assert.NoFileExists(t, tt.file)
			}
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	t.Setenv("MARKET_SERVER_PORT", "70000")

	_, err := runCLI(t, "summary", "--data", writeFixture(t))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig), "got %v", err)
	assert.ErrorContains(t, err, "invalid server port")
}
