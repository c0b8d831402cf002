package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case with spaces", "  DEBUG ", slog.LevelDebug},
		{"empty defaults to info", "", slog.LevelInfo},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentWorker,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("processing scan", FieldScanID, "abc-123")

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Errorf("expected component attribute in output, got %q", out)
	}
	if !strings.Contains(out, "scan_id=abc-123") {
		t.Errorf("expected scan_id attribute in output, got %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	httpLogger := logger.WithComponent(ComponentHTTP)
	if httpLogger.Component() != ComponentHTTP {
		t.Errorf("Component() = %q, want %q", httpLogger.Component(), ComponentHTTP)
	}
	if logger.Component() != ComponentApp {
		t.Errorf("original logger component changed to %q", logger.Component())
	}

	httpLogger.Warn("slow request")
	if out := buf.String(); !strings.Contains(out, "component=http") {
		t.Errorf("expected http component in output, got %q", out)
	}
}
