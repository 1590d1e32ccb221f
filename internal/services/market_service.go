package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/franfh599/dashboard-autos/internal/cache"
	"github.com/franfh599/dashboard-autos/internal/config"
	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	apperrors "github.com/franfh599/dashboard-autos/internal/errors"
	"github.com/franfh599/dashboard-autos/internal/infrastructure"
	"github.com/franfh599/dashboard-autos/internal/loader"
	"github.com/franfh599/dashboard-autos/internal/report"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
	"github.com/franfh599/dashboard-autos/pkg/contracts/events"
)

// MarketConfig configures the market service.
type MarketConfig struct {
	LocalPath       string
	URL             string
	Loader          loader.Config
	CacheTTL        time.Duration
	CacheSize       int
	DropDuplicates  bool
	DefaultMode     domain.ViewMode
	DefaultTopN     int
	ForecastHorizon int
	Summary         dataprocessing.SummaryConfig
	ReportTitle     string
	Report          report.Options
}

// DefaultMarketConfig returns the configuration used when none is given.
func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		LocalPath:       "historial_lite.parquet",
		Loader:          loader.DefaultConfig(),
		CacheTTL:        time.Hour,
		CacheSize:       8,
		DropDuplicates:  true,
		DefaultMode:     domain.ViewFull,
		DefaultTopN:     10,
		ForecastHorizon: 6,
		Summary:         dataprocessing.SummaryConfig{RankingSize: 15, ImporterSize: 5},
		ReportTitle:     "Resumen Ejecutivo de Importaciones",
		Report:          report.DefaultOptions(),
	}
}

// MarketConfigFrom derives the service configuration from the application
// configuration.
func MarketConfigFrom(cfg *config.Config) MarketConfig {
	mc := DefaultMarketConfig()
	mc.LocalPath = cfg.Data.LocalPath
	mc.URL = cfg.Data.URL
	mc.Loader = loader.Config{
		MaxDownloadBytes: cfg.Data.MaxDownloadBytes,
		HTTPTimeout:      cfg.Data.HTTPTimeout,
	}
	mc.CacheTTL = cfg.Data.CacheTTL
	mc.CacheSize = cfg.Data.CacheSize
	mc.DropDuplicates = cfg.Data.DropDuplicates
	if mode, err := domain.ParseViewMode(cfg.Data.DefaultMode); err == nil {
		mc.DefaultMode = mode
	}
	if cfg.Data.DefaultTopN > 0 {
		mc.DefaultTopN = cfg.Data.DefaultTopN
	}
	mc.Summary = dataprocessing.SummaryConfig{
		RankingSize:  cfg.Report.RankingSize,
		ImporterSize: cfg.Report.ImporterSize,
	}
	if cfg.Report.Title != "" {
		mc.ReportTitle = cfg.Report.Title
	}
	mc.Report.RankingSize = cfg.Report.RankingSize
	mc.Report.ImporterSize = cfg.Report.ImporterSize
	mc.Report.Chart = cfg.Report.Chart
	mc.Report.ChartWidthMM = cfg.Report.ChartWidthMM
	return mc
}

// MarketService loads the import dataset once per source and computes views
// from it. Loaded datasets and view results are memoized per source identity
// and parameters.
type MarketService struct {
	logger  *slog.Logger
	config  MarketConfig
	loader  *loader.Loader
	cleaner *dataprocessing.Cleaner
	metrics *infrastructure.PipelineMetrics

	datasets *cache.Cache[*Dataset]
	views    *cache.Cache[any]
	group    singleflight.Group

	mu        sync.RWMutex
	upload    *loader.Upload
	watcher   *cache.Watcher
	publisher EventPublisher

	now func() time.Time
}

// NewMarketService creates the service. metrics may be nil.
func NewMarketService(logger *slog.Logger, cfg MarketConfig, metrics *infrastructure.PipelineMetrics) *MarketService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = domain.ViewFull
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 10
	}

	return &MarketService{
		logger:   logger.With(slog.String("component", "market_service")),
		config:   cfg,
		loader:   loader.NewLoader(logger, cfg.Loader),
		cleaner:  dataprocessing.NewCleaner(logger, dataprocessing.CleanerConfig{DropDuplicates: cfg.DropDuplicates}),
		metrics:  metrics,
		datasets: cache.New[*Dataset](cfg.CacheTTL, cfg.CacheSize),
		views:    cache.New[any](cfg.CacheTTL, cfg.CacheSize*32),
		now:      time.Now,
	}
}

// EventPublisher receives dataset change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, msg events.WebSocketMessage)
}

// SetPublisher registers p for dataset change notifications.
func (s *MarketService) SetPublisher(p EventPublisher) {
	s.mu.Lock()
	s.publisher = p
	s.mu.Unlock()
}

func (s *MarketService) publish(ctx context.Context, t events.MessageType, snapshot events.DatasetSnapshot) {
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()
	if p == nil {
		return
	}
	msg := events.NewMessage(t, snapshot)
	msg.TraceID = infrastructure.GetTraceID(ctx)
	p.Publish(ctx, msg)
}

func snapshotOf(result LoadResult) events.DatasetSnapshot {
	snap := events.DatasetSnapshot{Status: string(result.Status), Missing: result.Missing}
	if ds := result.Dataset; ds != nil {
		snap.Key = ds.Key
		snap.Origin = string(ds.Origin)
		snap.Name = ds.Name
		snap.Rows = ds.Table.Len()
	}
	return snap
}

// Source returns the candidate locations in resolution order.
func (s *MarketService) Source() loader.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loader.Source{
		Upload:    s.upload,
		LocalPath: s.config.LocalPath,
		URL:       s.config.URL,
	}
}

// Load returns the current dataset, reading and cleaning it on first use.
func (s *MarketService) Load(ctx context.Context) LoadResult {
	src := s.Source()
	key := src.Identity()

	if key != "" {
		ds, ok := s.datasets.Get(key)
		s.metrics.RecordCacheLookup(ctx, "dataset", ok)
		if ok {
			return resultFor(ds)
		}
	}

	flightKey := key
	if flightKey == "" {
		flightKey = "unresolved"
	}
	v, _, _ := s.group.Do(flightKey, func() (interface{}, error) {
		return s.load(ctx, src, key), nil
	})
	return v.(LoadResult)
}

func (s *MarketService) load(ctx context.Context, src loader.Source, key string) LoadResult {
	start := s.now()

	raw, err := s.loader.Load(ctx, src)
	if err != nil {
		status := classifyLoadError(err)
		s.metrics.RecordLoad(ctx, string(status), "", s.now().Sub(start))
		s.logger.WarnContext(ctx, "dataset unavailable",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return LoadResult{Status: status, Err: err}
	}

	table, maxDate := s.cleaner.Clean(ctx, raw.Frame)
	stats := table.Stats()
	s.metrics.RecordDropped(ctx, "invalid_date", stats.InvalidDates)
	s.metrics.RecordDropped(ctx, "negative_quantity", stats.NegativeQuantity)
	s.metrics.RecordDropped(ctx, "duplicate", stats.Duplicates)

	ds := &Dataset{
		Key:      key,
		Origin:   raw.Origin,
		Name:     raw.Name,
		Format:   raw.Format,
		Table:    table,
		MaxDate:  maxDate,
		LoadedAt: s.now(),
	}
	s.datasets.Set(key, ds)

	result := resultFor(ds)
	s.metrics.RecordLoad(ctx, string(result.Status), string(raw.Origin), s.now().Sub(start))
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("status", string(result.Status)),
		slog.String("origin", string(raw.Origin)),
		slog.String("name", raw.Name),
		slog.Int("rows", table.Len()),
		slog.Duration("elapsed", s.now().Sub(start)))
	s.publish(ctx, events.MessageTypeDatasetLoaded, snapshotOf(result))

	return result
}

func resultFor(ds *Dataset) LoadResult {
	missing := ds.Table.Missing()
	if len(missing) > 0 {
		return LoadResult{Status: StatusMissingColumns, Dataset: ds, Missing: missing}
	}
	return LoadResult{Status: StatusOK, Dataset: ds}
}

// Upload makes data the active source and loads it.
func (s *MarketService) Upload(ctx context.Context, name string, data []byte) LoadResult {
	if len(data) == 0 {
		err := apperrors.NewAppValidationError(ErrEmptyUpload.Error()).WithContext("name", name)
		return LoadResult{Status: StatusMalformed, Err: err}
	}

	s.mu.Lock()
	s.upload = &loader.Upload{Name: name, Data: data}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("name", name),
		slog.Int("bytes", len(data)))

	result := s.Load(ctx)
	if result.Usable() {
		s.publish(ctx, events.MessageTypeDatasetUploaded, snapshotOf(result))
	}
	return result
}

// ClearUpload drops an uploaded dataset so the configured source is used again.
func (s *MarketService) ClearUpload(ctx context.Context) {
	s.mu.Lock()
	upload := s.upload
	s.upload = nil
	s.mu.Unlock()

	if upload != nil {
		key := loader.Source{Upload: upload}.Identity()
		s.invalidate(ctx, key, "upload_cleared")
		s.publish(ctx, events.MessageTypeDatasetCleared, events.DatasetSnapshot{Key: key, Name: upload.Name})
	}
}

// Reload forgets the current dataset and its views and loads it again.
func (s *MarketService) Reload(ctx context.Context) LoadResult {
	s.invalidate(ctx, s.Source().Identity(), "reload")
	return s.Load(ctx)
}

func (s *MarketService) invalidate(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	s.datasets.Invalidate(key)
	removed := s.views.InvalidatePrefix(key + "|")
	s.logger.InfoContext(ctx, "dataset cache invalidated",
		slog.String("key", key),
		slog.String("reason", reason),
		slog.Int("views_removed", removed))
	s.publish(ctx, events.MessageTypeDatasetInvalidated, events.DatasetSnapshot{Key: key, Reason: reason})
}

// Watch invalidates the cached local dataset whenever its file changes. It
// blocks until ctx is done. Without a local path it returns immediately.
func (s *MarketService) Watch(ctx context.Context) error {
	if s.config.LocalPath == "" {
		return nil
	}

	w, err := cache.NewWatcher(s.logger, s.config.LocalPath, func(path string) {
		s.invalidate(context.Background(), "local:"+path, "source_changed")
	})
	if err != nil {
		return apperrors.NewStorageError("watch dataset source", err).
			WithContext("path", s.config.LocalPath)
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	defer w.Close()
	return w.Run(ctx)
}

// Info describes the current dataset.
func (s *MarketService) Info(ctx context.Context) DatasetInfo {
	result := s.Load(ctx)
	info := DatasetInfo{Status: result.Status, Missing: result.Missing}
	if result.Err != nil {
		info.Error = result.Err.Error()
	}

	if ds := result.Dataset; ds != nil {
		loaded := ds.LoadedAt
		info.Origin = ds.Origin
		info.Name = ds.Name
		info.Format = ds.Format
		info.Rows = ds.Table.Len()
		info.Columns = ds.Table.Columns()
		info.MaxDate = ds.MaxDate
		info.Years = ds.Table.Years()
		info.Stats = ds.Table.Stats()
		info.LoadedAt = &loaded
		if ds.Table.HasColumn(dataprocessing.ColBrand) {
			info.Brands = ds.Table.Distinct(domain.DimensionBrand)
		}
	}
	return info
}

// CacheStats reports the dataset and view cache counters.
func (s *MarketService) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"datasets": s.datasets.Stats(),
		"views":    s.views.Stats(),
	}
}

// Close stops background work.
func (s *MarketService) Close() error {
	s.datasets.Stop()
	s.views.Stop()

	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}

// dataset returns the usable dataset or the load error.
func (s *MarketService) dataset(ctx context.Context) (*Dataset, error) {
	result := s.Load(ctx)
	if result.Usable() {
		return result.Dataset, nil
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return nil, apperrors.NewNoDataError("no dataset available")
}

// memo returns the cached value for (dataset, op, params) or computes it.
func memo[T any](ctx context.Context, s *MarketService, ds *Dataset, op string, params domain.ViewParams, compute func() T) T {
	key := ds.Key + "|" + op + "|" + paramsKey(params)
	if v, ok := s.views.Get(key); ok {
		if typed, ok := v.(T); ok {
			s.metrics.RecordCacheLookup(ctx, "view", true)
			return typed
		}
	}
	s.metrics.RecordCacheLookup(ctx, "view", false)

	value := compute()
	s.views.Set(key, value)
	return value
}

func paramsKey(p domain.ViewParams) string {
	years := make([]string, len(p.Years))
	for i, y := range p.Years {
		years[i] = strconv.Itoa(y)
	}
	return strings.Join([]string{
		string(p.Mode),
		strings.Join(years, ","),
		string(p.Dimension),
		strconv.Itoa(p.TopN),
		p.Brand,
	}, "|")
}
