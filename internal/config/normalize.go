package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAlignment()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CheckpointDir) == "" {
		c.Paths.CheckpointDir = defaultCheckpointDir
	}
	if c.Paths.CheckpointDir, err = expandPath(c.Paths.CheckpointDir); err != nil {
		return fmt.Errorf("paths.checkpoint_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	// DecodingDir stays empty unless set: an empty value means "write nothing".
	if strings.TrimSpace(c.Paths.DecodingDir) != "" {
		if c.Paths.DecodingDir, err = expandPath(c.Paths.DecodingDir); err != nil {
			return fmt.Errorf("paths.decoding_dir: %w", err)
		}
	} else {
		c.Paths.DecodingDir = ""
	}
	return nil
}

func (c *Config) normalizeAlignment() {
	c.Alignment.Task = strings.ToLower(strings.TrimSpace(c.Alignment.Task))
	if c.Alignment.Task == "" {
		c.Alignment.Task = defaultAlignmentTask
	}
	if c.Alignment.BufferCapacity <= 0 {
		c.Alignment.BufferCapacity = defaultBufferCapacity
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
