// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/state"
	"github.com/waypointdb/waypoint/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

type realDB struct{ *sql.DB }

func (r realDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func TestDiffAgainstFreshDatabaseIsAllPending(t *testing.T) {
	testutils.WithDatabase(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		store := state.New(realDB{db}, state.Postgres{Schema: "public"}, "public")

		exists, err := store.TableExists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		m := migrations.Migration{
			ConfigurationName: "mitre",
			BuiltIn:           true,
			DateTime:          mustTime(t, "20240101000000"),
			Steps: map[migrations.Direction]migrations.MigrationStep{
				migrations.Change: {Source: "create table mitre_migration_state(...)"},
			},
		}

		entries, err := store.Diff(ctx, []migrations.Migration{m})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, state.Pending, entries[0].Status)
	})
}

func TestStoreBootstrapsAndRecordsAgainstRealPostgres(t *testing.T) {
	testutils.WithDatabase(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		dialect := state.Postgres{Schema: "public"}

		_, err := db.ExecContext(ctx, dialect.CreateTableSQL(state.TableName))
		require.NoError(t, err)

		store := state.New(realDB{db}, dialect, "public")

		exists, err := store.TableExists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		m := migrations.Migration{
			ConfigurationName: "mariadb",
			DateTime:          mustTime(t, "20240101000000"),
			Steps: map[migrations.Direction]migrations.MigrationStep{
				migrations.Change: {Source: "select 1"},
			},
		}
		require.NoError(t, store.Record(ctx, m))

		entries, err := store.Diff(ctx, []migrations.Migration{m})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, state.Applied, entries[0].Status)

		require.NoError(t, store.Remove(ctx, m))

		entries, err = store.Diff(ctx, []migrations.Migration{m})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, state.Pending, entries[0].Status)
	})
}
