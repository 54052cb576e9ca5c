// Package observability records embedding metrics through OpenTelemetry.
//
// Instruments are created from a metric.MeterProvider. Without an SDK
// provider installed the global provider is a no-op, so recording is
// always safe and costs nothing.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the meter name used for all instruments.
const InstrumentationName = "github.com/custodia-labs/sercha-embed"

// Metric names.
const (
	MetricNameInputTokens       = "embedding.input_tokens"
	MetricNameChunks            = "embedding.chunks"
	MetricNameOperationDuration = "embedding.operation.duration"
	MetricNameErrors            = "embedding.errors"
	MetricNameCacheLookups      = "embedding.cache.lookups"
)

// Attribute keys.
const (
	AttrModel     = "embedding.model"
	AttrOperation = "embedding.operation"
	AttrCacheHit  = "embedding.cache.hit"
)

// Operation names.
const (
	OperationEmbed    = "embed"
	OperationEmbedAll = "embed_all"
)

var (
	// Chunks per text: 1 for anything under the model limit.
	chunkBuckets = []float64{1, 2, 3, 4, 8, 16, 32, 64, 128}

	// Seconds.
	durationBuckets = []float64{
		0.005, 0.01, 0.02, 0.04, 0.08, 0.16, 0.32, 0.64, 1.28, 2.56, 5.12, 10.24, 20.48, 40.96,
	}
)

// Metrics holds the embedding instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	inputTokens  metric.Int64Counter
	chunks       metric.Int64Histogram
	duration     metric.Float64Histogram
	errors       metric.Int64Counter
	cacheLookups metric.Int64Counter
}

// NewMetrics creates instruments from mp.
// Instruments that fail to register are left nil and skipped.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	m := mp.Meter(InstrumentationName)
	out := &Metrics{}

	if c, err := m.Int64Counter(
		MetricNameInputTokens,
		metric.WithDescription("Text tokens consumed by embedding calls"),
		metric.WithUnit("{token}"),
	); err == nil {
		out.inputTokens = c
	}

	if h, err := m.Int64Histogram(
		MetricNameChunks,
		metric.WithDescription("Chunks a text was split into"),
		metric.WithUnit("{chunk}"),
		metric.WithExplicitBucketBoundaries(chunkBuckets...),
	); err == nil {
		out.chunks = h
	}

	if h, err := m.Float64Histogram(
		MetricNameOperationDuration,
		metric.WithDescription("Embedding operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err == nil {
		out.duration = h
	}

	if c, err := m.Int64Counter(
		MetricNameErrors,
		metric.WithDescription("Failed embedding operations"),
		metric.WithUnit("1"),
	); err == nil {
		out.errors = c
	}

	if c, err := m.Int64Counter(
		MetricNameCacheLookups,
		metric.WithDescription("Embedding cache lookups"),
		metric.WithUnit("1"),
	); err == nil {
		out.cacheLookups = c
	}

	return out
}

// Global returns instruments bound to the global OpenTelemetry provider.
func Global() *Metrics {
	return NewMetrics(otel.GetMeterProvider())
}

// RecordText records one embedded text.
func (m *Metrics) RecordText(ctx context.Context, model string, tokens, chunks int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrModel, model))
	if m.inputTokens != nil {
		m.inputTokens.Add(ctx, int64(tokens), attrs)
	}
	if m.chunks != nil {
		m.chunks.Record(ctx, int64(chunks), attrs)
	}
}

// RecordDuration records how long an operation took.
func (m *Metrics) RecordDuration(ctx context.Context, model, operation string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.String(AttrOperation, operation),
	))
}

// RecordError records a failed operation.
func (m *Metrics) RecordError(ctx context.Context, model, operation string) {
	if m == nil || m.errors == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.String(AttrOperation, operation),
	))
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, model string, hit bool) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.Bool(AttrCacheHit, hit),
	))
}
