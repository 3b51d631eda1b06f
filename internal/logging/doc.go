// Package logging assembles structured slog loggers and formatting helpers used
// across racefeatures.
//
// It owns the console and JSON handlers, the optional JSON log file, and a
// run-id handler that stamps every record with the identifier of the current
// invocation. Context-aware helpers tag log lines with the job, season, and
// event being processed. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
