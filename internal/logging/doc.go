// Package logging assembles structured slog loggers for vinscan.
//
// It owns the console and JSON handlers, routes records to the configured log
// file (and optionally stderr), and stamps every record with the invocation's
// session ID plus the correlation ID and request token found in its context.
// NewNop serves tests and wiring code that must not fail.
package logging
