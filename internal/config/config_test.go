package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"softalign/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "softalign", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.DecodingDir != "" {
		t.Fatalf("decoding dir should default to empty, got %q", cfg.Paths.DecodingDir)
	}
	if cfg.Generation.Beam != 5 || cfg.Generation.NBest != 1 {
		t.Fatalf("unexpected generation defaults: beam=%d nbest=%d", cfg.Generation.Beam, cfg.Generation.NBest)
	}
	if cfg.Generation.MaxTokens != 0 {
		t.Fatalf("max_tokens should default to unset, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Alignment.Task != "vanilla" || cfg.Alignment.Layer != 2 {
		t.Fatalf("unexpected alignment defaults: task=%q layer=%d", cfg.Alignment.Task, cfg.Alignment.Layer)
	}
	if cfg.Alignment.BufferCapacity != 4_000_000 {
		t.Fatalf("unexpected buffer capacity: %d", cfg.Alignment.BufferCapacity)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "softalign.toml")
	contents := strings.Join([]string{
		"[paths]",
		`decoding_dir = "~/decodes"`,
		"[alignment]",
		`task = "USEHEAD"`,
		"[logging]",
		`format = "weird"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if want := filepath.Join(tempHome, "decodes"); cfg.Paths.DecodingDir != want {
		t.Fatalf("decoding dir = %q, want %q", cfg.Paths.DecodingDir, want)
	}
	if cfg.Alignment.Task != "usehead" {
		t.Fatalf("task not lowercased: %q", cfg.Alignment.Task)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unknown log format should normalize to console, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	tests := []struct {
		name     string
		contents string
	}{
		{"bad beam", "[generation]\nbeam = 0\n"},
		{"nbest over beam", "[generation]\nbeam = 2\nnbest = 3\n"},
		{"bad task", "[alignment]\ntask = \"freestyle\"\n"},
		{"negative layer", "[alignment]\nlayer = -1\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Errorf("%s: Load accepted invalid config", tt.name)
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Paths.DecodingDir = filepath.Join(tempHome, "decodes")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.DecodingDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing after EnsureDirectories", dir)
		}
	}
}
