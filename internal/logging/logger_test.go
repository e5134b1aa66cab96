package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "json",
			format: "json",
			check: func(t *testing.T, out string) {
				var entry map[string]any
				if err := json.Unmarshal([]byte(out), &entry); err != nil {
					t.Fatalf("expected JSON line, got %q: %v", out, err)
				}
				if entry["msg"] != "persisted" || entry["destination"] != "correlations" {
					t.Fatalf("unexpected entry: %v", entry)
				}
			},
		},
		{
			name:   "console",
			format: "console",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "msg=persisted") || !strings.Contains(out, "destination=correlations") {
					t.Fatalf("unexpected console line: %q", out)
				}
			},
		},
		{
			name:   "auto falls back to json off a terminal",
			format: "auto",
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "{") {
					t.Fatalf("expected JSON, got %q", out)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Options{Level: "info", Format: tc.format, Output: &buf})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Info("persisted", "destination", "correlations")
			tc.check(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
}
