package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestComponentStatesMany_RecordsSpan(t *testing.T) {
	recorder, cleanup := installResolverSpanRecorder(t)
	defer cleanup()

	states, _ := newFixtureStates(t)
	_, err := states.Many(context.Background(), player, map[string]any{"owner": "alice"})
	require.NoError(t, err)

	span := findEndedSpanByName(recorder.Ended(), "component.many")
	require.NotNil(t, span)
	assert.Equal(t, codes.Unset, span.Status().Code)

	attrs := spanAttributes(span)
	assert.Equal(t, "Player", attrs["component.name"].AsString())
	assert.Equal(t, int64(1), attrs["component.filters"].AsInt64())
	assert.Equal(t, "success", attrs["component.resolution.outcome"].AsString())
	assert.Equal(t, int64(4), attrs["component.resolution.rows"].AsInt64())

	assert.NotNil(t, findEndedSpanByName(recorder.Ended(), "introspection.load_attribute_schema"))
}

func TestComponentStatesByID_NotFoundSpanIsNotAnError(t *testing.T) {
	recorder, cleanup := installResolverSpanRecorder(t)
	defer cleanup()

	states, _ := newFixtureStates(t)
	_, err := states.ByID(context.Background(), position, "0x1")
	require.Error(t, err)

	span := findEndedSpanByName(recorder.Ended(), "component.by_id")
	require.NotNil(t, span)
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Equal(t, "not_found", spanAttributes(span)["component.resolution.outcome"].AsString())
}

func TestComponentStatesMany_ErrorSpan(t *testing.T) {
	recorder, cleanup := installResolverSpanRecorder(t)
	defer cleanup()

	states, _ := newFixtureStates(t)
	_, err := states.Many(context.Background(), player, map[string]any{"health": "lots"})
	require.Error(t, err)

	span := findEndedSpanByName(recorder.Ended(), "component.many")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "error", spanAttributes(span)["component.resolution.outcome"].AsString())
}

func installResolverSpanRecorder(t *testing.T) (*tracetest.SpanRecorder, func()) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	tp.RegisterSpanProcessor(recorder)

	oldProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return recorder, func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(oldProvider)
	}
}

func findEndedSpanByName(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, span := range spans {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}
