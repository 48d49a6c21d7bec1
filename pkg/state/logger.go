// SPDX-License-Identifier: Apache-2.0

package state

import "github.com/pterm/pterm"

// Logger reports ledger-level events that aren't errors but are worth
// surfacing: the store isn't bootstrapped yet, or an orphan was found.
type Logger interface {
	Info(msg string, args ...any)
}

type storeLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a Logger backed by pterm's structured logger.
func NewLogger() Logger {
	return &storeLogger{logger: pterm.DefaultLogger}
}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *storeLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) Info(msg string, args ...any) {}
