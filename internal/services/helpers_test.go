package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/franfh599/dashboard-autos/internal/shared/testutil"
)

const marketCSV = `FECHA;MARCA;MODELO;EMPRESA;CANTIDAD;VALOR US$ CIF
2023-01-10;TOYOTA;HILUX;AUTOS SUR;10;200000
2023-02-10;BYD;SONG;BYD PERU;5;150000
2023-09-10;TOYOTA;YARIS;AUTOS SUR;4;60000
2024-01-12;TOYOTA;HILUX;AUTOS SUR;8;170000
2024-02-14;BYD;SONG;BYD PERU;12;360000
2024-03-05;KIA;RIO;KIA MOTORS;3;45000
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestService(t *testing.T, configure func(*MarketConfig)) (*MarketService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)

	cfg := DefaultMarketConfig()
	cfg.LocalPath = writeFile(t, t.TempDir(), "historial.csv", marketCSV)
	cfg.Report.Compress = false
	cfg.Report.Chart = false
	if configure != nil {
		configure(&cfg)
	}

	svc := NewMarketService(logger, cfg, nil)
	t.Cleanup(func() { svc.Close() })
	return svc, handler
}
