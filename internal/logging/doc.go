// Package logging assembles structured slog loggers and formatting helpers used
// across automv.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, stages, and project names. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Structured logs describe what automv itself did. The transcript a pipeline
// run streams back to its caller is separate and lives in internal/pipeline.
package logging
