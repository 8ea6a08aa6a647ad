package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"softalign/internal/testsupport"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "softalign.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("pass complete", Int("batches", 3))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "pass complete") || !strings.Contains(string(data), `"batches":3`) {
		t.Fatalf("log file missing expected record: %q", string(data))
	}
}

func TestNewFromConfigTeesIntoLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLogFormat("json"))

	logger, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("run started", String("subset", "test"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "softalign.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "run started") {
		t.Fatalf("log file missing record: %q", string(data))
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("ignored", Error(nil))
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger reports enabled")
	}
}
