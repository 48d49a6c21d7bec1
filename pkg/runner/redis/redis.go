// SPDX-License-Identifier: Apache-2.0

// Package redis implements the Redis runner. A step's rendered source is
// a newline-separated sequence of commands, each split into arguments on
// whitespace; quoted arguments are not supported.
package redis

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.Redis, New)
}

// Runner applies steps as a sequence of Redis commands.
type Runner struct {
	client *goredis.Client
}

// New opens a client against the database described by cfg.
func New(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.IPOrHostname, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DatabaseNumber,
	})
	return &Runner{client: client}, nil
}

// Apply sends each non-blank line of renderedSource as a single Redis
// command, stopping at the first error.
func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	scanner := bufio.NewScanner(strings.NewReader(renderedSource))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args := splitArgs(line)
		if len(args) == 0 {
			continue
		}

		if err := r.client.Do(ctx, args...).Err(); err != nil && err != goredis.Nil {
			return migrations.RunnerError{Runner: reserved.Redis, Reason: fmt.Sprintf("executing %q", line), Cause: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return migrations.RunnerError{Runner: reserved.Redis, Reason: "reading step source", Cause: err}
	}
	return nil
}

func splitArgs(line string) []interface{} {
	fields := strings.Fields(line)
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return args
}

func (r *Runner) Close() error {
	return r.client.Close()
}
