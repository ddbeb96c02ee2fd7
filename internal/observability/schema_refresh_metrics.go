package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RefreshOutcome classifies a schema refresh attempt.
type RefreshOutcome string

const (
	// RefreshSwapped means a new snapshot replaced the active one.
	RefreshSwapped RefreshOutcome = "swapped"
	// RefreshUnchanged means component metadata matched the active snapshot.
	RefreshUnchanged RefreshOutcome = "unchanged"
	RefreshFailed    RefreshOutcome = "failed"
)

// RefreshAttempt describes one pass of the schema manager.
type RefreshAttempt struct {
	Trigger    string // startup, poll or admin
	Outcome    RefreshOutcome
	Duration   time.Duration
	Components int
}

// SchemaRefreshMetrics tracks how often component metadata is reloaded and
// what the active schema currently exposes.
type SchemaRefreshMetrics struct {
	attempts  metric.Int64Counter
	latency   metric.Float64Histogram
	lastSwap  atomic.Int64
	exposed   atomic.Int64
	hasSchema atomic.Bool
}

// InitSchemaRefreshMetrics registers the schema refresh instruments.
func InitSchemaRefreshMetrics(logger *slog.Logger) (*SchemaRefreshMetrics, error) {
	meter := otel.Meter(MeterName)
	m := &SchemaRefreshMetrics{}

	var err error
	m.attempts, err = meter.Int64Counter(
		"schema.refresh.attempts.total",
		metric.WithDescription("Schema refresh attempts by trigger and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema refresh counter: %w", err)
	}

	m.latency, err = meter.Float64Histogram(
		"schema.refresh.duration",
		metric.WithDescription("Time spent reading component metadata and assembling the schema"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema refresh duration histogram: %w", err)
	}

	lastSwap, err := meter.Int64ObservableGauge(
		"schema.refresh.last_swap_unix",
		metric.WithDescription("Unix time the active schema snapshot was installed"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema swap gauge: %w", err)
	}

	exposed, err := meter.Int64ObservableGauge(
		"schema.components",
		metric.WithDescription("Components exposed by the active GraphQL schema"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema components gauge: %w", err)
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			if !m.hasSchema.Load() {
				return nil
			}
			observer.ObserveInt64(lastSwap, m.lastSwap.Load())
			observer.ObserveInt64(exposed, m.exposed.Load())
			return nil
		},
		lastSwap,
		exposed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register schema refresh gauge callback: %w", err)
	}

	logger.Info("schema refresh metrics initialized")
	return m, nil
}

// RecordRefresh records one refresh attempt. A nil receiver is a no-op.
func (m *SchemaRefreshMetrics) RecordRefresh(ctx context.Context, attempt RefreshAttempt) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("trigger", attempt.Trigger),
		attribute.String("outcome", string(attempt.Outcome)),
	)
	m.attempts.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(attempt.Duration.Microseconds())/1000, attrs)

	if attempt.Outcome == RefreshFailed {
		return
	}
	m.exposed.Store(int64(attempt.Components))
	if attempt.Outcome == RefreshSwapped {
		m.lastSwap.Store(time.Now().Unix())
		m.hasSchema.Store(true)
	}
}
