// SPDX-License-Identifier: Apache-2.0

// Package interpreter implements the generalized runner backing Bash3,
// Bash4, Python3, and Rails: each is the same shape (pipe rendered source
// into an executable's stdin) parameterized only by which executable and
// which arguments to invoke it with.
package interpreter

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.Bash3, factoryFor(reserved.Bash3, "bash", "-s"))
	runner.Register(reserved.Bash4, factoryFor(reserved.Bash4, "bash", "-s"))
	runner.Register(reserved.Python3, factoryFor(reserved.Python3, "python3", "-"))
	runner.Register(reserved.Rails, factoryFor(reserved.Rails, "rails", "runner", "-"))
}

// Runner pipes a step's rendered source into an interpreter process over
// stdin and waits for it to exit.
type Runner struct {
	name       string
	executable string
	args       []string
}

func factoryFor(name, executable string, args ...string) runner.Factory {
	return func(configName string, cfg config.RunnerConfiguration) (runner.Runner, error) {
		exe := executable
		if cfg.Database != "" {
			// Database doubles as an executable-path override for
			// interpreter runners, which have no database of their own.
			exe = cfg.Database
		}
		return &Runner{name: name, executable: exe, args: args}, nil
	}
}

// Apply runs the interpreter, feeding it renderedSource on stdin. A
// nonzero exit or a write failure is reported as a RunnerError.
func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	cmd := exec.CommandContext(ctx, r.executable, r.args...)
	cmd.Stdin = bytes.NewReader([]byte(renderedSource))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return migrations.RunnerError{
			Runner: r.name,
			Reason: "interpreter exited with an error: " + stderr.String(),
			Cause:  err,
		}
	}
	return nil
}

func (r *Runner) Close() error {
	return nil
}
