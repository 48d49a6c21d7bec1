// SPDX-License-Identifier: Apache-2.0

package migrations

import "github.com/pterm/pterm"

// Logger reports discovery-time events that are recovered locally rather
// than surfaced as errors: a candidate dropped during a directory walk, or
// a migration excluded because its configuration name doesn't resolve to a
// runner that accepts its extension.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type migrationLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a Logger backed by pterm's structured logger.
func NewLogger() Logger {
	return &migrationLogger{logger: pterm.DefaultLogger}
}

// NewNoopLogger returns a Logger that discards everything, the default for
// library embedding and tests that don't care about discovery diagnostics.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *migrationLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, l.logger.Args(args...))
}

func (l *migrationLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, l.logger.Args(args...))
}

func (l *noopLogger) Warn(msg string, args ...any)  {}
func (l *noopLogger) Error(msg string, args ...any) {}
