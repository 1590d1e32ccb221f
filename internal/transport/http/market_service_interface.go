package http

import (
	"context"
	"io"

	"github.com/franfh599/dashboard-autos/internal/cache"
	"github.com/franfh599/dashboard-autos/internal/services"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

// MarketServiceInterface is the part of services.MarketService the handlers use.
type MarketServiceInterface interface {
	Info(ctx context.Context) services.DatasetInfo
	Upload(ctx context.Context, name string, data []byte) services.LoadResult
	ClearUpload(ctx context.Context)
	Reload(ctx context.Context) services.LoadResult
	CacheStats() map[string]cache.Stats

	Macro(ctx context.Context, params domain.ViewParams) (*services.MacroView, error)
	Benchmark(ctx context.Context, params domain.ViewParams) (*services.BenchmarkView, error)
	DeepDive(ctx context.Context, params domain.ViewParams) (*services.DeepDiveView, error)
	YoY(ctx context.Context, params domain.ViewParams) (services.YoYResult, error)
	Summary(ctx context.Context, params domain.ViewParams) (domain.ReportSummary, error)
	Export(ctx context.Context, w io.Writer, format services.ExportFormat, params domain.ViewParams) error
}
