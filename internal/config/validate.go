package config

import (
	"errors"
	"fmt"

	"softalign/internal/align"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.Beam < 1 {
		return errors.New("generation.beam must be at least 1")
	}
	if c.Generation.NBest < 1 {
		return errors.New("generation.nbest must be at least 1")
	}
	if c.Generation.NBest > c.Generation.Beam {
		return fmt.Errorf("generation.nbest (%d) cannot exceed generation.beam (%d)", c.Generation.NBest, c.Generation.Beam)
	}
	if c.Generation.MaxTokens < 0 || c.Generation.MaxSentences < 0 {
		return errors.New("generation.max_tokens and generation.max_sentences cannot be negative")
	}
	if c.Generation.RequiredBatchSizeMultiple < 1 {
		return errors.New("generation.required_batch_size_multiple must be at least 1")
	}
	if c.Generation.MaxSourcePositions < 1 || c.Generation.MaxTargetPositions < 1 {
		return errors.New("generation.max_source_positions and generation.max_target_positions must be positive")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if _, err := align.ParseTask(c.Alignment.Task); err != nil {
		return fmt.Errorf("alignment.task: %w", err)
	}
	if c.Alignment.Layer < 0 {
		return errors.New("alignment.layer cannot be negative")
	}
	if c.Alignment.Heads < 0 {
		return errors.New("alignment.heads cannot be negative")
	}
	return nil
}
