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

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentFetcher).Info("hello", FieldPage, 3)

	out := buf.String()
	if !strings.Contains(out, "component=fetcher") {
		t.Fatalf("missing component in %q", out)
	}
	if !strings.Contains(out, "page=3") {
		t.Fatalf("missing page in %q", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentAggregator).
		WithOperation(OpCollect).
		WithPage(2, "https://example.test/2.json").
		WithProgress(10, 38).
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldComponent] != ComponentAggregator || f[FieldOperation] != OpCollect {
		t.Fatalf("unexpected fields: %v", f)
	}
	if f[FieldPage] != 2 || f[FieldURL] != "https://example.test/2.json" {
		t.Fatalf("unexpected page fields: %v", f)
	}
	if f[FieldError] != "boom" {
		t.Fatalf("error field = %v", f[FieldError])
	}
	if len(f.ToSlice()) != len(f)*2 {
		t.Fatalf("ToSlice length mismatch")
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger := NewSilent()
	var got *Logger
	h := Middleware(logger)(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http component logger, got %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
