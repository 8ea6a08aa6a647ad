// Package config loads, normalizes, and validates softalign configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Command-line flags override whatever the
// file provides, so the file only needs to hold the stable parts of a setup:
// corpus and checkpoint locations plus generation defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
