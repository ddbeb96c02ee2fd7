package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func installManualReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetMeterProvider(previous)
	})
	return reader
}

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestResolverMetrics_RecordResolution(t *testing.T) {
	reader := installManualReader(t)

	metrics, err := InitResolverMetrics(testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	metrics.IncrementActive(ctx)
	metrics.RecordResolution(ctx, "Position", "many", 3, 12*time.Millisecond, nil)
	metrics.RecordResolution(ctx, "Position", "by_id", 0, time.Millisecond, errors.New("boom"))
	metrics.DecrementActive(ctx)

	collected := collectMetricNames(t, reader)
	assert.Contains(t, collected, "component.resolution.duration")
	assert.Contains(t, collected, "component.resolutions.total")
	assert.Contains(t, collected, "component.resolution.errors.total")
	assert.Contains(t, collected, "component.resolution.rows")

	total, ok := collected["component.resolutions.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var count int64
	for _, dp := range total.DataPoints {
		count += dp.Value
	}
	assert.Equal(t, int64(2), count)
}

func TestSchemaRefreshMetrics_NoGaugesBeforeFirstSwap(t *testing.T) {
	reader := installManualReader(t)

	metrics, err := InitSchemaRefreshMetrics(testLogger())
	require.NoError(t, err)
	metrics.RecordRefresh(context.Background(), RefreshAttempt{Trigger: "startup", Outcome: RefreshFailed})

	collected := collectMetricNames(t, reader)
	assert.NotContains(t, collected, "schema.components")

	var nilMetrics *SchemaRefreshMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordRefresh(context.Background(), RefreshAttempt{Outcome: RefreshSwapped})
	})
}

func TestResolverMetrics_NilIsNoop(t *testing.T) {
	var metrics *ResolverMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.IncrementActive(ctx)
		metrics.RecordResolution(ctx, "Position", "many", 1, time.Millisecond, nil)
		metrics.DecrementActive(ctx)
	})
}

func TestSchemaRefreshMetrics_RecordRefresh(t *testing.T) {
	reader := installManualReader(t)

	metrics, err := InitSchemaRefreshMetrics(testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRefresh(ctx, RefreshAttempt{Trigger: "startup", Outcome: RefreshSwapped, Duration: 5 * time.Millisecond, Components: 4})
	metrics.RecordRefresh(ctx, RefreshAttempt{Trigger: "poll", Outcome: RefreshUnchanged, Duration: time.Millisecond, Components: 4})
	metrics.RecordRefresh(ctx, RefreshAttempt{Trigger: "admin", Outcome: RefreshFailed, Duration: time.Millisecond})

	collected := collectMetricNames(t, reader)
	assert.Contains(t, collected, "schema.refresh.duration")
	assert.Contains(t, collected, "schema.refresh.last_swap_unix")

	attempts, ok := collected["schema.refresh.attempts.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	outcomes := map[string]int64{}
	for _, dp := range attempts.DataPoints {
		outcome, _ := dp.Attributes.Value("outcome")
		outcomes[outcome.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"swapped": 1, "unchanged": 1, "failed": 1}, outcomes)

	gauge, ok := collected["schema.components"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)
}
