// Package logging assembles the structured slog loggers used by every
// mediasort binary.
//
// It owns the console and JSON handlers, level parsing and output routing.
// Console output is chosen automatically when stderr is a terminal. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
