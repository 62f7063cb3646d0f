package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Info("test message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "test message") {
		t.Errorf("expected 'test message' in output, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected 'key=value' in output, got %q", out)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Warn("warning")

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level in output, got %q", out)
	}
}

func TestNew_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output at INFO level, got %q", buf.String())
	}
}

func TestNewWithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, xe := NewWithLevel(&buf, "debug")
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	logger.Debug("visible", "service", "app")
	if !strings.Contains(buf.String(), "service=app") {
		t.Errorf("expected debug output, got %q", buf.String())
	}

	if _, xe := NewWithLevel(&buf, "verbose"); xe == nil || xe.Code != "XCRED_CFG_INVALID" {
		t.Fatalf("expected XCRED_CFG_INVALID, got %v", xe)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tc := range cases {
		got, xe := ParseLevel(tc.in)
		if xe != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tc.in, xe)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at ERROR")
	}
}
