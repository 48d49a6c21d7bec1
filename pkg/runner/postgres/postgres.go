// SPDX-License-Identifier: Apache-2.0

// Package postgres implements the PostgreSQL runner.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/lib/pq"

	"github.com/waypointdb/waypoint/internal/connstr"
	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.PostgreSQL, New)
}

// Runner applies steps against a PostgreSQL database over database/sql.
type Runner struct {
	db *sql.DB
}

// New opens a connection to the database described by cfg.
func New(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
	base := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password), cfg.IPOrHostname, cfg.Port, cfg.Database)
	dsn, err := connstr.AppendSearchPathOption(base, cfg.SchemaOrDefault())
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &Runner{db: db}, nil
}

// Apply executes renderedSource as a single statement batch. Direction is
// irrelevant to a plain SQL runner: the statement itself already encodes
// whether it's going up or down.
func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	if _, err := r.db.ExecContext(ctx, renderedSource); err != nil {
		return migrations.RunnerError{Runner: reserved.PostgreSQL, Reason: "executing statement", Cause: err}
	}
	return nil
}

func (r *Runner) Close() error {
	return r.db.Close()
}
