package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, slog.LevelDebug, ComponentApp)

	logger.WithComponent(ComponentStorage).Info("opened", FieldCount, 3)

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component should appear once: %q", out)
	}
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "count=3") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, slog.LevelWarn, ComponentApp)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info should be filtered at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should be logged: %q", buf.String())
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, slog.LevelInfo, ComponentHTTP)

	var got *Logger
	handler := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.InfoContext(r.Context(), "inside")
		}),
	))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http logger in context, got %+v", got)
	}
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %q", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Errorf("fallback logger should have unknown component")
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithUser("u1").
		WithExpense("e1", 1250, "Travel").
		WithError(errors.New("boom")).
		WithError(nil)

	if fields[FieldUserID] != "u1" || fields[FieldAmountCents] != int64(1250) || fields[FieldError] != "boom" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if len(fields.ToSlice()) != 2*len(fields) {
		t.Errorf("ToSlice length mismatch")
	}
}
