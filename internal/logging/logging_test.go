package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestNewJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Level: "warn"}, &buf)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "asset", "Bitcoin")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["msg"] != "shown" || rec["asset"] != "Bitcoin" || rec["service"] != "optionsim" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNewTextToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optionsim.log")
	logger, closer := New(Config{Format: "text", File: path}, nil)
	logger.Info("phase changed", "to", "active")
	if err := closer.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "msg=\"phase changed\"") || !strings.Contains(string(data), "to=active") {
		t.Errorf("unexpected log file contents %q", data)
	}
}
