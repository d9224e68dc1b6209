// Package logging builds the structured slog loggers used by docsim.
//
// It owns the console and JSON handlers, level parsing, and output routing
// (stderr plus an optional log file), and exposes context helpers so pipeline
// code can tag every line with the run ID it belongs to. A no-op logger is
// provided for tests and for wiring code that must not fail.
package logging
