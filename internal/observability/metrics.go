package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes every instrument registered by the service.
const MeterName = "component-graphql"

// ResolverMetrics holds custom metrics for component state resolutions.
type ResolverMetrics struct {
	resolutionDuration metric.Float64Histogram
	resolutionCounter  metric.Int64Counter
	errorCounter       metric.Int64Counter
	activeResolutions  metric.Int64UpDownCounter
	rowsCount          metric.Int64Histogram
}

// InitResolverMetrics initializes resolution metrics on the global meter provider.
func InitResolverMetrics(logger *slog.Logger) (*ResolverMetrics, error) {
	meter := otel.Meter(MeterName)

	resolutionDuration, err := meter.Float64Histogram(
		"component.resolution.duration",
		metric.WithDescription("Duration of component state resolutions in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution duration histogram: %w", err)
	}

	resolutionCounter, err := meter.Int64Counter(
		"component.resolutions.total",
		metric.WithDescription("Total number of component state resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"component.resolution.errors.total",
		metric.WithDescription("Total number of failed component state resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution error counter: %w", err)
	}

	activeResolutions, err := meter.Int64UpDownCounter(
		"component.resolutions.active",
		metric.WithDescription("Number of resolutions holding a database connection"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active resolutions counter: %w", err)
	}

	rowsCount, err := meter.Int64Histogram(
		"component.resolution.rows",
		metric.WithDescription("Number of records returned by a resolution"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows histogram: %w", err)
	}

	if logger != nil {
		logger.Info("component resolution metrics initialized")
	}
	return &ResolverMetrics{
		resolutionDuration: resolutionDuration,
		resolutionCounter:  resolutionCounter,
		errorCounter:       errorCounter,
		activeResolutions:  activeResolutions,
		rowsCount:          rowsCount,
	}, nil
}

// RecordResolution records one finished resolution. A nil receiver is a no-op.
func (m *ResolverMetrics) RecordResolution(ctx context.Context, componentName, operation string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("component", componentName),
		attribute.String("operation", operation),
		attribute.Bool("has_errors", err != nil),
	}

	m.resolutionDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	m.resolutionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("component", componentName),
			attribute.String("operation", operation),
		))
		return
	}
	m.rowsCount.Record(ctx, int64(rows), metric.WithAttributes(
		attribute.String("component", componentName),
		attribute.String("operation", operation),
	))
}

// IncrementActive marks a resolution as holding a connection.
func (m *ResolverMetrics) IncrementActive(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeResolutions.Add(ctx, 1)
}

// DecrementActive releases a resolution's active mark.
func (m *ResolverMetrics) DecrementActive(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeResolutions.Add(ctx, -1)
}
