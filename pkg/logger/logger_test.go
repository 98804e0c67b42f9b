package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

// logAndParse logs one info line through WithContext and returns the decoded
// JSON fields.
func logAndParse(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	l := NewWithWriter("logger-test", "info", &buf)
	WithContext(ctx, l).Info("probe")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	return out
}

func spanContext(t *testing.T, traceHex, spanHex string) context.Context {
	t.Helper()

	traceID, err := trace.TraceIDFromHex(traceHex)
	if err != nil {
		t.Fatalf("trace id: %v", err)
	}
	spanID, err := trace.SpanIDFromHex(spanHex)
	if err != nil {
		t.Fatalf("span id: %v", err)
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestWithContext_CorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "req-123")
	out := logAndParse(t, ctx)

	if got := out["correlation_id"]; got != "req-123" {
		t.Errorf("correlation_id = %v, want %q", got, "req-123")
	}
}

func TestWithContext_AccountID(t *testing.T) {
	ctx := WithAccountID(context.Background(), "acc-789")
	out := logAndParse(t, ctx)

	if got := out["account_id"]; got != "acc-789" {
		t.Errorf("account_id = %v, want %q", got, "acc-789")
	}
}

func TestWithContext_EmptyContextAddsNothing(t *testing.T) {
	out := logAndParse(t, context.Background())

	for _, field := range []string{"correlation_id", "account_id", "trace_id", "span_id"} {
		if _, ok := out[field]; ok {
			t.Errorf("%s should not be present on an empty context", field)
		}
	}
}

func TestWithContext_SpanIDs(t *testing.T) {
	ctx := spanContext(t, "4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	out := logAndParse(t, ctx)

	if got := out["trace_id"]; got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", got)
	}
	if got := out["span_id"]; got != "00f067aa0ba902b7" {
		t.Errorf("span_id = %v", got)
	}
}

func TestWithContext_AllFields(t *testing.T) {
	ctx := spanContext(t, "abcdef1234567890abcdef1234567890", "1234567890abcdef")
	ctx = WithCorrelationID(ctx, "corr-all")
	ctx = WithAccountID(ctx, "acc-all")
	out := logAndParse(t, ctx)

	want := map[string]string{
		"correlation_id": "corr-all",
		"account_id":     "acc-all",
		"trace_id":       "abcdef1234567890abcdef1234567890",
		"span_id":        "1234567890abcdef",
	}
	for field, expected := range want {
		if got := out[field]; got != expected {
			t.Errorf("%s = %v, want %q", field, got, expected)
		}
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("logger-test", "info", &buf)

	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext should return the logger stored via NewContext")
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext should never return nil")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
