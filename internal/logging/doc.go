// Package logging assembles structured slog loggers and formatting helpers used
// across reelmatch components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handling code can tag
// log lines with operation names, titles, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Logs are written to stderr (plus an optional file) so command output on
// stdout stays machine-readable.
package logging
