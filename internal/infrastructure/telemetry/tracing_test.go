package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan_Attributes(t *testing.T) {
	recorder := withRecorder(t)
	tenantID := uuid.New()

	ctx, span := StartSpan(context.Background(), "radicacion.allocate",
		SpanAttrTenantID, tenantID,
		SpanAttrCategoryCode, "CL",
		SpanAttrYear, 2024,
		"dangling",
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrSequence, int64(7))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "radicacion.allocate", spans[0].Name())
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(SpanAttrTenantID, tenantID.String()))
	assert.Contains(t, attrs, attribute.String(SpanAttrCategoryCode, "CL"))
	assert.Contains(t, attrs, attribute.Int(SpanAttrYear, 2024))
	assert.Contains(t, attrs, attribute.Int64(SpanAttrSequence, 7))
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "tramite.create")
	RecordError(span, nil)
	RecordError(span, errors.New("allocation failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "allocation failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestAttr(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), attr("k", "v"))
	assert.Equal(t, attribute.Int("k", 3), attr("k", 3))
	assert.Equal(t, attribute.Int64("k", 3), attr("k", int64(3)))
	assert.Equal(t, attribute.Float64("k", 1.5), attr("k", 1.5))
	assert.Equal(t, attribute.Bool("k", true), attr("k", true))
	assert.Equal(t, attribute.String("k", "[1 2]"), attr("k", []uint8{1, 2}))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{}, nil)
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestRootSampler(t *testing.T) {
	assert.Contains(t, rootSampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, rootSampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, rootSampler(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}
