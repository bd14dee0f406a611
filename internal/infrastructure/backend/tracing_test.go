package backend

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	prevProvider, prevPropagator := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})
	return sr
}

func TestClient_Tracing(t *testing.T) {
	sr := setupTestTracer(t)

	var traceparent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		if r.URL.Path == "/api/products" {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	err = c.UpdateStatus(context.Background(), "7", "PREPARING")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET products", ok.Name())
	assert.Contains(t, ok.Attributes(), attribute.Int("http.response.status_code", http.StatusOK))
	assert.Equal(t, codes.Unset, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Contains(t, failed.Attributes(), attribute.Int("http.response.status_code", http.StatusBadGateway))

	// the backend sees the client span as its parent
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, failed.SpanContext().TraceID().String())
	assert.Contains(t, traceparent, failed.SpanContext().SpanID().String())
}
