package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
		ok       bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("%q: expected %v/%v, got %v/%v", tt.in, tt.expected, tt.ok, got, ok)
		}
	}
}

func TestInitWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")

	L.Info("hidden")
	L.Warn("shown", "team", "t1")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["team"] != "t1" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := ToContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected context logger")
	}
	if FromContext(context.Background()) != L {
		t.Error("expected global logger fallback")
	}
}
