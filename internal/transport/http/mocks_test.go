package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/franfh599/dashboard-autos/internal/cache"
	"github.com/franfh599/dashboard-autos/internal/services"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

type mockMarketService struct {
	mock.Mock
}

func (m *mockMarketService) Info(ctx context.Context) services.DatasetInfo {
	return m.Called(ctx).Get(0).(services.DatasetInfo)
}

func (m *mockMarketService) Upload(ctx context.Context, name string, data []byte) services.LoadResult {
	return m.Called(ctx, name, data).Get(0).(services.LoadResult)
}

func (m *mockMarketService) ClearUpload(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockMarketService) Reload(ctx context.Context) services.LoadResult {
	return m.Called(ctx).Get(0).(services.LoadResult)
}

func (m *mockMarketService) CacheStats() map[string]cache.Stats {
	return m.Called().Get(0).(map[string]cache.Stats)
}

func (m *mockMarketService) Macro(ctx context.Context, params domain.ViewParams) (*services.MacroView, error) {
	args := m.Called(ctx, params)
	view, _ := args.Get(0).(*services.MacroView)
	return view, args.Error(1)
}

func (m *mockMarketService) Benchmark(ctx context.Context, params domain.ViewParams) (*services.BenchmarkView, error) {
	args := m.Called(ctx, params)
	view, _ := args.Get(0).(*services.BenchmarkView)
	return view, args.Error(1)
}

func (m *mockMarketService) DeepDive(ctx context.Context, params domain.ViewParams) (*services.DeepDiveView, error) {
	args := m.Called(ctx, params)
	view, _ := args.Get(0).(*services.DeepDiveView)
	return view, args.Error(1)
}

func (m *mockMarketService) YoY(ctx context.Context, params domain.ViewParams) (services.YoYResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(services.YoYResult), args.Error(1)
}

func (m *mockMarketService) Summary(ctx context.Context, params domain.ViewParams) (domain.ReportSummary, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.ReportSummary), args.Error(1)
}

func (m *mockMarketService) Export(ctx context.Context, w io.Writer, format services.ExportFormat, params domain.ViewParams) error {
	args := m.Called(ctx, w, format, params)
	if payload, ok := args.Get(0).(string); ok && payload != "" {
		_, _ = io.WriteString(w, payload)
	}
	return args.Error(1)
}

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthChecker) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthChecker) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthChecker) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}
