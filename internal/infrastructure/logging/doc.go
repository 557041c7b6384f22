// Package logging provides structured logging for SafeVault.
//
// It wraps log/slog with service default fields (service name, version)
// and config-driven level, format, and output selection. Handlers are
// JSON by default so log lines are machine-parseable in production;
// text output is available for development.
package logging
