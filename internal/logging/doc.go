// Package logging assembles structured slog loggers used across b2ctail.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so components tag their lines with
// a stable component name, stream name, and session ID. A no-op logger is
// provided for tests and for wiring code that cannot fail.
//
// Remote log content itself is never written through these loggers; it goes to
// the command's stdout so the two can be separated.
package logging
