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
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentGrocery, Output: &buf})
	l.Info("list generated", FieldItemCount, 3)

	out := buf.String()
	if !strings.Contains(out, `"component":"grocery"`) || !strings.Contains(out, `"item_count":3`) {
		t.Fatalf("unexpected log line %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentWorker).Info("export done")
	if !strings.Contains(buf.String(), `"component":"worker"`) {
		t.Fatalf("component not switched: %s", buf.String())
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithMeal("m1", "Tacos").WithError(nil).WithRevision(7).WithComponent(ComponentApp)
	if _, ok := f[FieldError]; ok {
		t.Errorf("nil error should not be recorded")
	}
	if f[FieldMealName] != "Tacos" || f[FieldRevision] != int64(7) {
		t.Errorf("unexpected fields %v", f)
	}
	f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Errorf("error not recorded")
	}
	if got := len(f.ToSlice()); got != 2*(len(f)-1) {
		t.Errorf("ToSlice length = %d", got)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "text", Output: &buf}).With(FieldRequestID, "req-1")
	FromContext(IntoContext(context.Background(), l)).Info("inside")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id missing: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatalf("FromContext must fall back to a default logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Format: "text", Output: &buf}))
		r := httptest.NewRequest(http.MethodGet, "/api/grocery?week=2026-02-02", nil)
		sl.LogHTTPEnd(context.Background(), r, tt.status, 12, "203.0.113.9")
		out := buf.String()
		if !strings.Contains(out, tt.want) || !strings.Contains(out, "path=/api/grocery") {
			t.Errorf("status %d: unexpected log line %s", tt.status, out)
		}
	}
}
