// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	tmpl "github.com/waypointdb/waypoint/pkg/migrations/template"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
	"github.com/waypointdb/waypoint/pkg/state"
)

// Engine ties the migration source, the ledger, and the runner cache
// together for the lifetime of a single invocation.
type Engine struct {
	Config      config.Configuration
	Store       *state.Store
	Environment string

	// RunID correlates every result this invocation produces, for
	// operators grepping logs across several concurrent runs.
	RunID uuid.UUID

	// Logger receives a line per result as Up/Down produce it. Defaults
	// to a no-op logger when unset.
	Logger Logger

	runners *runner.Cache
}

// New constructs an Engine. The state store connection is expected to
// already be open; New does not dial it.
func New(cfg config.Configuration, store *state.Store, environment string) *Engine {
	return &Engine{Config: cfg, Store: store, Environment: environment, RunID: uuid.New(), runners: runner.NewCache()}
}

// WithLogger attaches the logger that receives per-result run events.
func (e *Engine) WithLogger(logger Logger) *Engine {
	e.Logger = logger
	return e
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return NewNoopLogger()
	}
	return e.Logger
}

// Close releases every runner connection opened during this invocation.
func (e *Engine) Close() error {
	return e.runners.CloseAll()
}

// Plan returns the ledger diff for the given known migrations, optionally
// restricted to a single configuration name.
func (e *Engine) Plan(ctx context.Context, known []migrations.Migration, onlyConfig string) ([]state.Entry, error) {
	entries, err := e.Store.Diff(ctx, known)
	if err != nil {
		return nil, err
	}
	if onlyConfig == "" {
		return entries, nil
	}

	var out []state.Entry
	for _, entry := range entries {
		if entry.Migration.ConfigurationName != onlyConfig {
			out = append(out, state.Entry{Migration: entry.Migration, Status: state.FilteredOut})
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Up applies every Pending entry in version order, stopping at the first
// failure: every Pending migration after a failure is reported as
// SkippedDueToEarlierError rather than attempted.
func (e *Engine) Up(ctx context.Context, entries []state.Entry) []Result {
	pending := pendingInOrder(entries)

	var results []Result
	failed := false

	for _, m := range pending {
		if failed {
			results = append(results, Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: SkippedDueToEarlierError})
			continue
		}

		res := e.applyForward(ctx, m)
		e.logger().Info("applied migration", "run", e.RunID.String(), "version", res.Version, "configuration", res.ConfigurationName, "tag", res.Tag.String())
		results = append(results, res)
		if res.Failed() {
			failed = true
		}
	}

	return results
}

// Down unapplies every Applied (or Orphaned) entry in reverse version
// order, stopping at the first failure the same way Up does. A migration
// that isn't Reversible (it has no Down step, or it has a Change step) is
// reported as IrreversibleMigration rather than attempted.
func (e *Engine) Down(ctx context.Context, entries []state.Entry) []Result {
	reversible := appliedInReverseOrder(entries)

	var results []Result
	failed := false

	for _, m := range reversible {
		if failed {
			results = append(results, Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: SkippedDueToEarlierError})
			continue
		}

		if !m.Reversible() {
			results = append(results, Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: IrreversibleMigration})
			continue
		}

		res := e.applyBackward(ctx, m)
		e.logger().Info("unapplied migration", "run", e.RunID.String(), "version", res.Version, "configuration", res.ConfigurationName, "tag", res.Tag.String())
		results = append(results, res)
		if res.Failed() {
			failed = true
		}
	}

	return results
}

func pendingInOrder(entries []state.Entry) []migrations.Migration {
	var out []migrations.Migration
	for _, e := range entries {
		if e.Status == state.Pending {
			out = append(out, e.Migration)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out
}

func appliedInReverseOrder(entries []state.Entry) []migrations.Migration {
	var out []migrations.Migration
	for _, e := range entries {
		if e.Status == state.Applied || e.Status == state.Orphaned {
			out = append(out, e.Migration)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.After(out[j].DateTime) })
	return out
}

func (e *Engine) applyForward(ctx context.Context, m migrations.Migration) Result {
	step, ok := m.ForwardStep()
	if !ok {
		return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Failure, Reason: "migration has no up or change step"}
	}

	if err := e.runStep(ctx, m, step); err != nil {
		return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Failure, Reason: err.Error()}
	}

	if err := e.Store.Record(ctx, m); err != nil {
		return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Failure, Reason: err.Error()}
	}

	return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Success}
}

func (e *Engine) applyBackward(ctx context.Context, m migrations.Migration) Result {
	step := m.Steps[migrations.Down]

	if err := e.runStep(ctx, m, step); err != nil {
		return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Failure, Reason: err.Error()}
	}

	if err := e.Store.Remove(ctx, m); err != nil {
		return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Failure, Reason: err.Error()}
	}

	return Result{Version: m.Version(), ConfigurationName: m.ConfigurationName, Tag: Success}
}

func (e *Engine) runStep(ctx context.Context, m migrations.Migration, step migrations.MigrationStep) error {
	cfg, ok := e.Config.Get(m.ConfigurationName)
	if !ok {
		return migrations.ConfigurationError{Name: m.ConfigurationName, Reason: "not present in configuration file"}
	}

	r, err := e.runners.Get(m.ConfigurationName, cfg)
	if err != nil {
		return err
	}

	renderCtx := tmpl.New(e.Environment, m.ConfigurationName)
	if dialect, ok := stateStoreDialectName(cfg); ok && m.ConfigurationName == config.StateStoreName {
		renderCtx = renderCtx.WithStateStoreTable(dialect, state.TableName).
			WithVar("is_"+dialect, true).
			WithVar("mitre_migration_state_table_name", state.TableName)
		if dialect == "mysql" {
			renderCtx = renderCtx.WithStateStoreTable("mariadb", state.TableName).
				WithVar("mariadb_migration_state_database_name", cfg.Database)
		} else {
			renderCtx = renderCtx.WithVar("postgresql_migration_state_schema_name", cfg.SchemaOrDefault())
		}
	}

	rendered, err := step.Render(renderCtx)
	if err != nil {
		return err
	}

	direction := migrations.Up
	for d := range m.Steps {
		if m.Steps[d].Path == step.Path && step.Path != "" {
			direction = d
		}
	}

	return r.Apply(ctx, direction, rendered)
}

func stateStoreDialectName(cfg config.RunnerConfiguration) (string, bool) {
	switch name := cfg.RunnerName(); {
	case strings.EqualFold(name, reserved.PostgreSQL):
		return "postgres", true
	case strings.EqualFold(name, reserved.MariaDB):
		return "mysql", true
	default:
		return "", false
	}
}

// OpenStateStore dials the configured state-store runner and wraps it in a
// *state.Store using the dialect matching its reserved runner name.
func OpenStateStore(ctx context.Context, cfg config.Configuration) (*state.Store, *sql.DB, error) {
	rc, ok := cfg.StateStore()
	if !ok {
		return nil, nil, NoStateStoreError{}
	}
	if rc.Database == "" {
		return nil, nil, migrations.NoStateStoreDatabaseNameProvidedError{}
	}

	switch name := rc.RunnerName(); {
	case strings.EqualFold(name, reserved.PostgreSQL):
		dsn, err := postgresDSN(rc)
		if err != nil {
			return nil, nil, err
		}
		conn, err := openSQL(ctx, "postgres", dsn)
		if err != nil {
			return nil, nil, err
		}
		schema := rc.SchemaOrDefault()
		return state.New(wrapDB{conn}, state.Postgres{Schema: schema}, schema), conn, nil
	case strings.EqualFold(name, reserved.MariaDB):
		conn, err := openSQL(ctx, "mysql", mysqlDSN(rc))
		if err != nil {
			return nil, nil, err
		}
		return state.New(wrapDB{conn}, state.MySQL{Database: rc.Database}, rc.Database), conn, nil
	default:
		return nil, nil, migrations.ConfigurationError{
			Name:   config.StateStoreName,
			Reason: `state store runner must be "PostgreSQL" or "MariaDB"`,
		}
	}
}
