// SPDX-License-Identifier: Apache-2.0

// Package mariadb implements the MariaDB/MySQL runner.
package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.MariaDB, New)
}

// Runner applies steps against a MariaDB/MySQL database over database/sql.
type Runner struct {
	db *sql.DB
}

// New opens a connection to the database described by cfg.
func New(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?multiStatements=true",
		cfg.Username, cfg.Password, cfg.IPOrHostname, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &Runner{db: db}, nil
}

func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	if _, err := r.db.ExecContext(ctx, renderedSource); err != nil {
		return migrations.RunnerError{Runner: reserved.MariaDB, Reason: "executing statement", Cause: err}
	}
	return nil
}

func (r *Runner) Close() error {
	return r.db.Close()
}
