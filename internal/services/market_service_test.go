package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/franfh599/dashboard-autos/internal/config"
	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/infrastructure"
	"github.com/franfh599/dashboard-autos/internal/loader"
	"github.com/franfh599/dashboard-autos/internal/shared/testutil"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
	"github.com/franfh599/dashboard-autos/pkg/contracts/events"
)

func TestLoadStatuses(t *testing.T) {
	tests := []struct {
		name       string
		configure  func(t *testing.T, cfg *MarketConfig)
		wantStatus LoadStatus
		wantUsable bool
		wantErr    apperrors.ErrorType
	}{
		{
			name:       "ok",
			configure:  func(t *testing.T, cfg *MarketConfig) {},
			wantStatus: StatusOK,
			wantUsable: true,
		},
		{
			name: "no source",
			configure: func(t *testing.T, cfg *MarketConfig) {
				cfg.LocalPath = ""
			},
			wantStatus: StatusNoData,
			wantErr:    apperrors.ErrTypeNoData,
		},
		{
			name: "missing local file",
			configure: func(t *testing.T, cfg *MarketConfig) {
				cfg.LocalPath = filepath.Join(t.TempDir(), "historial_lite.parquet")
			},
			wantStatus: StatusNotFound,
			wantErr:    apperrors.ErrTypeNotFound,
		},
		{
			name: "corrupt parquet",
			configure: func(t *testing.T, cfg *MarketConfig) {
				cfg.LocalPath = writeFile(t, t.TempDir(), "historial.parquet", "definitely not parquet")
			},
			wantStatus: StatusMalformed,
			wantErr:    apperrors.ErrTypeParsing,
		},
		{
			name: "missing columns",
			configure: func(t *testing.T, cfg *MarketConfig) {
				cfg.LocalPath = writeFile(t, t.TempDir(), "partial.csv", "FECHA;MARCA;CANTIDAD\n2024-01-01;KIA;1\n")
			},
			wantStatus: StatusMissingColumns,
			wantUsable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, func(cfg *MarketConfig) { tt.configure(t, cfg) })

			result := svc.Load(context.Background())

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantUsable, result.Usable())
			if tt.wantErr != "" {
				require.Error(t, result.Err)
				assert.True(t, apperrors.IsType(result.Err, tt.wantErr), "got %v", result.Err)
				assert.Nil(t, result.Dataset)
			} else {
				assert.NoError(t, result.Err)
			}
		})
	}
}

func TestLoadMissingColumnsKeepsDataset(t *testing.T) {
	svc, handler := newTestService(t, func(cfg *MarketConfig) {
		cfg.LocalPath = writeFile(t, t.TempDir(), "partial.csv", "FECHA;MARCA;CANTIDAD\n2024-01-01;KIA;1\n")
	})

	result := svc.Load(context.Background())
	require.True(t, result.Usable())
	assert.Equal(t, []string{dataprocessing.ColCustomsValue}, result.Missing)
	assert.Equal(t, 1, result.Dataset.Table.Len())

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset loaded")
	testutil.AssertLogAttr(t, handler, "status", "missing_columns")
}

func TestLoadCachesDataset(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	first := svc.Load(ctx)
	second := svc.Load(ctx)

	require.True(t, first.Usable())
	assert.Same(t, first.Dataset, second.Dataset)
	assert.Equal(t, loader.OriginLocal, first.Dataset.Origin)
	assert.Equal(t, int64(1), svc.CacheStats()["datasets"].Hits)
}

func TestReloadPicksUpChanges(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	require.Equal(t, 6, svc.Load(ctx).Dataset.Table.Len())

	writeFile(t, filepath.Dir(svc.config.LocalPath), filepath.Base(svc.config.LocalPath),
		marketCSV+"2024-03-20;KIA;RIO;KIA MOTORS;1;15000\n")

	assert.Equal(t, 6, svc.Load(ctx).Dataset.Table.Len(), "cached until reloaded")
	assert.Equal(t, 7, svc.Reload(ctx).Dataset.Table.Len())
}

func TestUploadOverridesConfiguredSource(t *testing.T) {
	svc, handler := newTestService(t, nil)
	ctx := context.Background()

	result := svc.Upload(ctx, "subida.csv", []byte("FECHA,MARCA,CANTIDAD,VALOR CIF\n2022-05-01,MG,2,30000\n"))
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, loader.OriginUpload, result.Dataset.Origin)
	assert.Equal(t, "subida.csv", result.Dataset.Name)
	assert.Equal(t, []int{2022}, result.Dataset.Table.Years())
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset uploaded")

	svc.ClearUpload(ctx)
	assert.Equal(t, loader.OriginLocal, svc.Load(ctx).Dataset.Origin)
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []events.WebSocketMessage
}

func (p *recordingPublisher) Publish(_ context.Context, msg events.WebSocketMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) types() []events.MessageType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.MessageType, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Type
	}
	return out
}

func TestPublishesDatasetEvents(t *testing.T) {
	svc, _ := newTestService(t, nil)
	pub := &recordingPublisher{}
	svc.SetPublisher(pub)
	ctx := context.Background()

	svc.Load(ctx)
	svc.Load(ctx)
	assert.Equal(t, []events.MessageType{events.MessageTypeDatasetLoaded}, pub.types(), "cache hits are silent")

	svc.Upload(ctx, "subida.csv", []byte("FECHA,MARCA,CANTIDAD,VALOR CIF\n2022-05-01,MG,2,30000\n"))
	svc.ClearUpload(ctx)
	svc.Reload(ctx)

	assert.Equal(t, []events.MessageType{
		events.MessageTypeDatasetLoaded,
		events.MessageTypeDatasetLoaded,
		events.MessageTypeDatasetUploaded,
		events.MessageTypeDatasetInvalidated,
		events.MessageTypeDatasetCleared,
		events.MessageTypeDatasetInvalidated,
		events.MessageTypeDatasetLoaded,
	}, pub.types())

	uploaded := pub.messages[2].Data.(events.DatasetSnapshot)
	assert.Equal(t, "subida.csv", uploaded.Name)
	assert.Equal(t, "upload", uploaded.Origin)
	assert.Equal(t, 1, uploaded.Rows)

	invalidated := pub.messages[5].Data.(events.DatasetSnapshot)
	assert.Equal(t, "reload", invalidated.Reason)
	assert.Equal(t, svc.Source().Identity(), invalidated.Key)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result := svc.Upload(context.Background(), "vacio.csv", nil)

	assert.Equal(t, StatusMalformed, result.Status)
	assert.True(t, apperrors.IsType(result.Err, apperrors.ErrTypeValidation))
	assert.Equal(t, loader.OriginLocal, svc.Load(context.Background()).Dataset.Origin, "configured source still active")
}

func TestConcurrentLoads(t *testing.T) {
	svc, _ := newTestService(t, nil)

	var wg sync.WaitGroup
	results := make([]LoadResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Load(context.Background())
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, StatusOK, r.Status)
		assert.Equal(t, 6, r.Dataset.Table.Len())
	}
}

func TestWatchInvalidatesOnFileChange(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Equal(t, 6, svc.Load(ctx).Dataset.Table.Len())

	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Dir(svc.config.LocalPath), filepath.Base(svc.config.LocalPath),
		marketCSV+"2024-03-20;KIA;RIO;KIA MOTORS;1;15000\n")

	assert.Eventually(t, func() bool {
		return svc.Load(ctx).Dataset.Table.Len() == 7
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}

func TestWatchWithoutLocalPath(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *MarketConfig) { cfg.LocalPath = "" })
	assert.NoError(t, svc.Watch(context.Background()))
}

func TestInfo(t *testing.T) {
	svc, _ := newTestService(t, nil)

	info := svc.Info(context.Background())

	assert.Equal(t, StatusOK, info.Status)
	assert.Equal(t, 6, info.Rows)
	assert.Equal(t, []int{2023, 2024}, info.Years)
	assert.Equal(t, []string{"BYD", "KIA", "TOYOTA"}, info.Brands)
	require.NotNil(t, info.MaxDate)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *info.MaxDate)
	assert.Equal(t, loader.FormatCSV, info.Format)
	assert.Contains(t, info.Columns, dataprocessing.ColImporter)
	assert.Empty(t, info.Error)
}

func TestInfoWithoutSource(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *MarketConfig) { cfg.LocalPath = "" })

	info := svc.Info(context.Background())

	assert.Equal(t, StatusNoData, info.Status)
	assert.Zero(t, info.Rows)
	assert.NotEmpty(t, info.Error)
}

func TestLoadRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	cfg := DefaultMarketConfig()
	cfg.LocalPath = writeFile(t, t.TempDir(), "historial.csv", marketCSV+"fecha-mala;KIA;RIO;KIA MOTORS;1;1\n")
	svc := NewMarketService(nil, cfg, metrics)
	defer svc.Close()

	require.True(t, svc.Load(context.Background()).Usable())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["dataset_loads_total"])
	assert.Equal(t, int64(1), sums["dataset_rows_dropped_total"])
	assert.Equal(t, int64(1), sums["cache_lookups_total"])
}

func TestMarketConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Data.LocalPath = "data/imports.parquet"
	cfg.Data.URL = "https://example.com/imports.parquet"
	cfg.Data.DefaultMode = "YTD"
	cfg.Data.DefaultTopN = 7
	cfg.Report.RankingSize = 20

	mc := MarketConfigFrom(cfg)

	assert.Equal(t, "data/imports.parquet", mc.LocalPath)
	assert.Equal(t, "https://example.com/imports.parquet", mc.URL)
	assert.Equal(t, domain.ViewYTD, mc.DefaultMode)
	assert.Equal(t, 7, mc.DefaultTopN)
	assert.Equal(t, 20, mc.Summary.RankingSize)
	assert.Equal(t, 20, mc.Report.RankingSize)
	assert.Equal(t, time.Hour, mc.CacheTTL)
	assert.Equal(t, cfg.Data.MaxDownloadBytes, mc.Loader.MaxDownloadBytes)
	assert.Equal(t, "Resumen Ejecutivo de Importaciones", mc.ReportTitle)
}
