// Package logging assembles the structured slog loggers used across
// softalign commands.
//
// It owns level and output plumbing for the console and JSON handlers and
// exposes attr helper aliases so callers never import log/slog directly for
// field construction. A no-op logger is available for tests and wiring code
// that cannot fail.
package logging
