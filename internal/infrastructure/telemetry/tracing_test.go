package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the test
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartServiceSpan(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "ledger", "register_payment",
		telemetry.WithAttribute("fuente", "cuotaInicial"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.register_payment", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	v, ok := attrValue(spans[0].Attributes(), "fuente")
	require.True(t, ok)
	assert.Equal(t, "cuotaInicial", v.AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := recordSpans(t)
	clientID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, clientID,
		telemetry.SpanAttrSequence, int64(7),
		42, "non-string key is skipped",
		"dangling",
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, 1.5)
	span.End()

	attrs := sr.Ended()[0].Attributes()
	v, ok := attrValue(attrs, telemetry.SpanAttrClientID)
	require.True(t, ok)
	assert.Equal(t, clientID.String(), v.AsString())
	v, _ = attrValue(attrs, telemetry.SpanAttrSequence)
	assert.Equal(t, int64(7), v.AsInt64())
	v, _ = attrValue(attrs, telemetry.SpanAttrAmount)
	assert.Equal(t, 1.5, v.AsFloat64())
	_, ok = attrValue(attrs, "dangling")
	assert.False(t, ok)
	assert.Len(t, attrs, 3)
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, errors.New("ceiling exceeded"))
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "ceiling exceeded", got.Status().Description)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func TestHelpersTolerateNil(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})

	sr := recordSpans(t)
	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, nil)
	span.End()
	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
}

func TestTraceAndSpanIDs(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	recordSpans(t)
	ctx, span := telemetry.StartSpan(context.Background(), "op")
	defer span.End()
	assert.Len(t, telemetry.GetTraceID(ctx), 32)
	assert.Len(t, telemetry.GetSpanID(ctx), 16)
	assert.Equal(t, span, telemetry.SpanFromContext(ctx))
}

func TestAddEvent(t *testing.T) {
	sr := recordSpans(t)
	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.AddEvent(span, "step_reopened", telemetry.SpanAttrStep, "desembolsoCredito")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "step_reopened", events[0].Name)
	v, ok := attrValue(events[0].Attributes, telemetry.SpanAttrStep)
	require.True(t, ok)
	assert.Equal(t, "desembolsoCredito", v.AsString())
}
