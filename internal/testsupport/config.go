package testsupport

import (
	"path/filepath"
	"testing"

	"softalign/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.CheckpointDir = filepath.Join(base, "checkpoints")
	cfg.Paths.DecodingDir = filepath.Join(base, "decoding")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLogFormat overrides the configured log handler format.
func WithLogFormat(format string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Logging.Format = format
	}
}
