// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/waypointdb/waypoint/pkg/db"
	"github.com/waypointdb/waypoint/pkg/migrations"
)

func parseTime(version string) (time.Time, error) {
	return time.ParseInLocation(migrations.FormatStr, version, time.UTC)
}

// TableName is the reserved ledger table name every dialect creates and
// queries against.
const TableName = "mitre_migration_state"

// Store is the relational ledger: it records which migrations have been
// applied and reconstructs orphans from what it already knows, sharing one
// implementation across every relational Dialect.
type Store struct {
	DB      db.DB
	Dialect Dialect
	Schema  string

	// Logger receives bootstrap and orphan-discovery notices. Defaults to
	// a no-op logger when unset.
	Logger Logger
}

// New constructs a Store bound to conn using the given dialect.
func New(conn db.DB, dialect Dialect, schema string) *Store {
	return &Store{DB: conn, Dialect: dialect, Schema: schema}
}

// WithLogger attaches the logger that receives bootstrap/orphan notices.
func (s *Store) WithLogger(logger Logger) *Store {
	s.Logger = logger
	return s
}

func (s *Store) logger() Logger {
	if s.Logger == nil {
		return NewNoopLogger()
	}
	return s.Logger
}

// SchemaExists reports whether the ledger's schema (or, for MySQL, its
// database) exists at all. A state store whose schema doesn't exist yet
// has certainly never been bootstrapped.
func (s *Store) SchemaExists(ctx context.Context) (bool, error) {
	query, args := s.Dialect.SchemaExistsQuery(s.Schema)
	return s.exists(ctx, query, args)
}

// TableExists reports whether the ledger table itself exists.
func (s *Store) TableExists(ctx context.Context) (bool, error) {
	query, args := s.Dialect.TableExistsQuery(s.Schema, TableName)
	return s.exists(ctx, query, args)
}

func (s *Store) exists(ctx context.Context, query string, args []interface{}) (bool, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return false, migrations.StateStoreError{Reason: "checking existence", Cause: err}
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

// row is one ledger record as read back from the table, including the
// snapshot columns used to reconstruct an orphan.
type row struct {
	Version           string
	ConfigurationName string
	BuiltIn           bool
	Up                sql.NullString
	Down              sql.NullString
	Change            sql.NullString
}

func (s *Store) versions(ctx context.Context) ([]row, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.VersionsQuery(TableName))
	if err != nil {
		return nil, migrations.StateStoreError{Reason: "reading ledger", Cause: err}
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Version, &r.ConfigurationName, &r.BuiltIn, &r.Up, &r.Down, &r.Change); err != nil {
			return nil, migrations.StateStoreError{Reason: "scanning ledger row", Cause: err}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// reconstruct builds an orphan Migration from its ledger snapshot: whatever
// up, down or change step was recorded at apply time, so it can still be
// torn down even though it no longer exists on disk.
func (r row) reconstruct(dateTime func(version string) (migrations.Migration, error)) (migrations.Migration, error) {
	m, err := dateTime(r.Version)
	if err != nil {
		return migrations.Migration{}, err
	}
	m.ConfigurationName = r.ConfigurationName
	m.BuiltIn = r.BuiltIn
	m.Steps = map[migrations.Direction]migrations.MigrationStep{}
	if r.Change.Valid {
		m.Steps[migrations.Change] = migrations.MigrationStep{Source: r.Change.String}
	}
	if r.Down.Valid {
		m.Steps[migrations.Down] = migrations.MigrationStep{Source: r.Down.String}
	}
	if r.Up.Valid {
		m.Steps[migrations.Up] = migrations.MigrationStep{Source: r.Up.String}
	}
	return m, nil
}

// Diff compares the known migrations (discovered + built-in) against the
// ledger, classifying each by Status. A known migration with a matching
// ledger row is Applied; a known migration without one is Pending; a
// ledger row with no matching known migration is Orphaned, reconstructed
// from its own down/change snapshot.
func (s *Store) Diff(ctx context.Context, known []migrations.Migration) ([]Entry, error) {
	schemaExists, err := s.SchemaExists(ctx)
	if err != nil {
		return nil, err
	}
	tableExists := false
	if schemaExists {
		tableExists, err = s.TableExists(ctx)
		if err != nil {
			return nil, err
		}
	}
	if !schemaExists || !tableExists {
		s.logger().Info("ledger not bootstrapped yet, treating every known migration as pending", "schema", s.Schema)
		out := make([]Entry, 0, len(known))
		for _, m := range known {
			out = append(out, Entry{Migration: m, Status: Pending})
		}
		return out, nil
	}

	rows, err := s.versions(ctx)
	if err != nil {
		return nil, err
	}

	applied := map[string]row{}
	for _, r := range rows {
		applied[r.Version+"\x00"+r.ConfigurationName] = r
	}

	var out []Entry
	seen := map[string]bool{}

	for _, m := range known {
		key := m.Version() + "\x00" + m.ConfigurationName
		seen[key] = true
		if _, ok := applied[key]; ok {
			out = append(out, Entry{Migration: m, Status: Applied})
		} else {
			out = append(out, Entry{Migration: m, Status: Pending})
		}
	}

	for _, r := range rows {
		key := r.Version + "\x00" + r.ConfigurationName
		if seen[key] {
			continue
		}
		m, err := r.reconstruct(parseVersionTime)
		if err != nil {
			return nil, err
		}
		s.logger().Info("found orphaned ledger entry with no matching known migration",
			"version", r.Version, "configuration", r.ConfigurationName)
		out = append(out, Entry{Migration: m, Status: Orphaned})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Migration.DateTime.Before(out[j].Migration.DateTime)
	})

	return out, nil
}

func parseVersionTime(version string) (migrations.Migration, error) {
	t, err := parseTime(version)
	if err != nil {
		return migrations.Migration{}, migrations.StateStoreError{Reason: "parsing ledger version " + version, Cause: err}
	}
	return migrations.Migration{DateTime: t}, nil
}

// Record inserts a ledger row for a migration that was just applied
// forward, snapshotting whichever steps it carried so it can later be
// reconstructed as an orphan if its source file disappears.
func (s *Store) Record(ctx context.Context, m migrations.Migration) error {
	var up, down, change sql.NullString
	if step, ok := m.Steps[migrations.Up]; ok {
		up = sql.NullString{String: step.Source, Valid: true}
	}
	if step, ok := m.Steps[migrations.Down]; ok {
		down = sql.NullString{String: step.Source, Valid: true}
	}
	if step, ok := m.Steps[migrations.Change]; ok {
		change = sql.NullString{String: step.Source, Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, s.Dialect.InsertSQL(TableName),
		m.Version(), m.ConfigurationName, m.BuiltIn, up, down, change)
	if err != nil {
		return migrations.StateStoreError{Reason: "recording " + m.Version(), Cause: err}
	}
	return nil
}

// Remove deletes the ledger row for a migration that was just unapplied.
func (s *Store) Remove(ctx context.Context, m migrations.Migration) error {
	_, err := s.DB.ExecContext(ctx, s.Dialect.DeleteSQL(TableName), m.Version(), m.ConfigurationName)
	if err != nil {
		return migrations.StateStoreError{Reason: "removing " + m.Version(), Cause: err}
	}
	return nil
}
