// SPDX-License-Identifier: Apache-2.0

package engine

import "github.com/pterm/pterm"

// Logger reports run-level events: each migration result as it's
// produced, independent of however the caller chooses to present the final
// result sequence.
type Logger interface {
	Info(msg string, args ...any)
}

type engineLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a Logger backed by pterm's structured logger.
func NewLogger() Logger {
	return &engineLogger{logger: pterm.DefaultLogger}
}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *engineLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) Info(msg string, args ...any) {}
