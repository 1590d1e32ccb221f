package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "historial_lite.parquet", cfg.Data.LocalPath)
				assert.Equal(t, time.Hour, cfg.Data.CacheTTL)
				assert.True(t, cfg.Data.DropDuplicates)
				assert.Equal(t, "FULL", cfg.Data.DefaultMode)
				assert.Equal(t, 15, cfg.Report.RankingSize)
				assert.Equal(t, 5, cfg.Report.ImporterSize)
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name: "yaml overrides only the keys it sets",
			file: `
server:
  port: 9090
data:
  url: https://example.com/historial.parquet
  default_mode: ytd
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "https://example.com/historial.parquet", cfg.Data.URL)
				assert.Equal(t, "historial_lite.parquet", cfg.Data.LocalPath)
				assert.Equal(t, "YTD", cfg.Data.DefaultMode)
			},
		},
		{
			name: "env beats yaml",
			file: `
server:
  port: 9090
`,
			env: map[string]string{
				"MARKET_SERVER_PORT":              "7070",
				"MARKET_DATA_CACHE_TTL":           "10m",
				"MARKET_DATA_DROP_DUPLICATES":     "false",
				"MARKET_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 10*time.Minute, cfg.Data.CacheTTL)
				assert.False(t, cfg.Data.DropDuplicates)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"MARKET_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid view mode",
			file:    "data:\n  default_mode: monthly\n",
			wantErr: true,
		},
		{
			name:    "invalid log output",
			env:     map[string]string{"MARKET_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [unclosed",
			wantErr: true,
		},
		{
			name:    "unsupported trace exporter",
			env:     map[string]string{"MARKET_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.file != "" {
				t.Setenv("MARKET_CONFIG_FILE", writeConfigFile(t, tt.file))
			} else {
				t.Setenv("MARKET_CONFIG_FILE", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidateFillsSizes(t *testing.T) {
	cfg := Default()
	cfg.Report.RankingSize = 0
	cfg.Report.ImporterSize = -1
	cfg.Data.DefaultTopN = 0
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, 15, cfg.Report.RankingSize)
	assert.Equal(t, 5, cfg.Report.ImporterSize)
	assert.Equal(t, 10, cfg.Data.DefaultTopN)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8181
	assert.Equal(t, "127.0.0.1:8181", cfg.Address())
}
