package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics are the dataset load and cache instruments.
type PipelineMetrics struct {
	DatasetLoads        metric.Int64Counter
	RowsDropped         metric.Int64Counter
	LoadDuration        metric.Float64Histogram
	CacheLookups        metric.Int64Counter
	ExportsTotal        metric.Int64Counter
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
	EventClients        metric.Int64UpDownCounter
	EventsPublished     metric.Int64Counter
}

// NewPipelineMetrics registers the instruments on meter. A nil meter uses the
// global provider.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	loads, err := meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Dataset load attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(
		"dataset_rows_dropped_total",
		metric.WithDescription("Rows removed while cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Time to read and clean a dataset"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter(
		"cache_lookups_total",
		metric.WithDescription("Memo cache lookups by result"),
	)
	if err != nil {
		return nil, err
	}

	exports, err := meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Generated exports by format"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActive, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	eventClients, err := meter.Int64UpDownCounter(
		"event_clients",
		metric.WithDescription("Connected dataset event subscribers"),
	)
	if err != nil {
		return nil, err
	}

	eventsPublished, err := meter.Int64Counter(
		"events_published_total",
		metric.WithDescription("Dataset events broadcast to subscribers, by type"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		DatasetLoads:        loads,
		RowsDropped:         dropped,
		LoadDuration:        duration,
		CacheLookups:        lookups,
		ExportsTotal:        exports,
		HTTPRequestsTotal:   httpRequests,
		HTTPRequestDuration: httpDuration,
		HTTPActiveRequests:  httpActive,
		EventClients:        eventClients,
		EventsPublished:     eventsPublished,
	}, nil
}

// RecordLoad counts a load attempt and, on success, its duration.
func (m *PipelineMetrics) RecordLoad(ctx context.Context, status, origin string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("origin", origin),
	)
	m.DatasetLoads.Add(ctx, 1, attrs)
	m.LoadDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordDropped adds n dropped rows under reason; zero is ignored.
func (m *PipelineMetrics) RecordDropped(ctx context.Context, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordCacheLookup counts a hit or miss for the named cache.
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, cacheName string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cacheName),
		attribute.String("result", result),
	))
}

// RecordExport counts a generated export.
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string, success bool) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordEventClient tracks a subscriber connecting (+1) or leaving (-1).
func (m *PipelineMetrics) RecordEventClient(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.EventClients.Add(ctx, delta)
}

// RecordEvent counts a broadcast event.
func (m *PipelineMetrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}
