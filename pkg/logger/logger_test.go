package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNew_ServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Output: &buf, Service: "bookings"})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept", "staff_id", "s1")
	line := decodeLine(t, &buf)
	assert.Equal(t, "bookings", line[SERVICE])
	assert.Equal(t, "s1", line["staff_id"])
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf})

	assert.Same(t, log, log.Ctx(context.Background()))

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{0x01}})
	ctx := trace.ContextWithSpanContext(WithRequestID(context.Background(), "req-1"), sc)

	log.Ctx(ctx).Info("booking created")
	line := decodeLine(t, &buf)
	assert.Equal(t, "req-1", line[RequestIDAttr])
	assert.Equal(t, traceID.String(), line[TraceIDAttr])
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("nothing to see")
	})
}
