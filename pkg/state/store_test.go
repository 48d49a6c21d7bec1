// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/state"
)

type stubDB struct {
	*sql.DB
}

func (s stubDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.DB.ExecContext(ctx, query, args...)
}
func (s stubDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.DB.QueryContext(ctx, query, args...)
}
func (s stubDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
func (s stubDB) Close() error { return s.DB.Close() }

func newMockStore(t *testing.T) (*state.Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	store := state.New(stubDB{mockDB}, state.Postgres{Schema: "public"}, "public")
	return store, mock
}

func expectStoreBootstrapped(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT 1 FROM information_schema.schemata WHERE schema_name = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM information_schema.tables WHERE table_schema = \$1 AND table_name = \$2`).
		WithArgs("public", "mitre_migration_state").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
}

func TestDiffClassifiesPendingAndOrphaned(t *testing.T) {
	store, mock := newMockStore(t)
	expectStoreBootstrapped(mock)

	rows := sqlmock.NewRows([]string{"version", "configuration_name", "built_in", "up", "down", "change"}).
		AddRow("20240101000000", "mariadb", false, nil, "DROP TABLE t;", nil)
	mock.ExpectQuery(`SELECT version, configuration_name, built_in, up, down, change FROM "mitre_migration_state" ORDER BY version`).
		WillReturnRows(rows)

	known := []migrations.Migration{
		{
			ConfigurationName: "mariadb",
			DateTime:          mustTime(t, "20240201000000"),
			Steps: map[migrations.Direction]migrations.MigrationStep{
				migrations.Change: {Source: "create"},
			},
		},
	}

	entries, err := store.Diff(context.Background(), known)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var pending, orphaned int
	for _, e := range entries {
		switch e.Status {
		case state.Pending:
			pending++
		case state.Orphaned:
			orphaned++
			assert.True(t, e.Migration.Reversible())
		}
	}
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, orphaned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiffTreatsMissingSchemaAsAllPending(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT 1 FROM information_schema.schemata WHERE schema_name = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	known := []migrations.Migration{
		{
			ConfigurationName: "mitre",
			DateTime:          mustTime(t, "20240101000000"),
			BuiltIn:           true,
			Steps: map[migrations.Direction]migrations.MigrationStep{
				migrations.Change: {Source: "create table mitre_migration_state(...)"},
			},
		},
	}

	entries, err := store.Diff(context.Background(), known)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, state.Pending, entries[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiffTreatsMissingTableAsAllPending(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT 1 FROM information_schema.schemata WHERE schema_name = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM information_schema.tables WHERE table_schema = \$1 AND table_name = \$2`).
		WithArgs("public", "mitre_migration_state").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	known := []migrations.Migration{
		{ConfigurationName: "widgets", DateTime: mustTime(t, "20240101000000")},
	}

	entries, err := store.Diff(context.Background(), known)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, state.Pending, entries[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInsertsLedgerRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "mitre_migration_state"`).
		WithArgs("20240101000000", "mariadb", false, nil, nil, "create table t;").
		WillReturnResult(sqlmock.NewResult(1, 1))

	m := migrations.Migration{
		ConfigurationName: "mariadb",
		DateTime:          mustTime(t, "20240101000000"),
		Steps: map[migrations.Direction]migrations.MigrationStep{
			migrations.Change: {Source: "create table t;"},
		},
	}

	require.NoError(t, store.Record(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveDeletesLedgerRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "mitre_migration_state"`).
		WithArgs("20240101000000", "mariadb").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := migrations.Migration{ConfigurationName: "mariadb", DateTime: mustTime(t, "20240101000000")}
	require.NoError(t, store.Remove(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mustTime(t *testing.T, version string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation(migrations.FormatStr, version, time.UTC)
	require.NoError(t, err)
	return tm
}
