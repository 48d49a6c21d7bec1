// SPDX-License-Identifier: Apache-2.0

package engine_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/engine"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/runner"
	"github.com/waypointdb/waypoint/pkg/state"
)

const testRunnerName = "__test_runner__"

type fakeRunner struct {
	failOn map[string]bool
	calls  []string
}

func (f *fakeRunner) Apply(ctx context.Context, direction migrations.Direction, renderedSource string) error {
	f.calls = append(f.calls, renderedSource)
	if f.failOn[renderedSource] {
		return assert.AnError
	}
	return nil
}

func (f *fakeRunner) Close() error { return nil }

var sharedFakeRunner = &fakeRunner{failOn: map[string]bool{}}

func init() {
	runner.Register(testRunnerName, func(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
		return sharedFakeRunner, nil
	})
}

type stubDB struct{ *sql.DB }

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

func newTestEngine(t *testing.T) (*engine.Engine, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	store := state.New(stubDB{mockDB}, state.Postgres{Schema: "public"}, "public")

	cfg := config.Configuration{
		Runners: map[string]config.RunnerConfiguration{
			"widgets": {Runner: testRunnerName},
		},
	}

	return engine.New(cfg, store, "test"), mock
}

func TestUpStopsAtFirstFailure(t *testing.T) {
	sharedFakeRunner.failOn = map[string]bool{}
	e, mock := newTestEngine(t)

	mock.ExpectExec(`INSERT INTO "mitre_migration_state"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "mitre_migration_state"`).WillReturnResult(sqlmock.NewResult(1, 1))

	entries := []state.Entry{
		{Status: state.Pending, Migration: migrations.Migration{
			ConfigurationName: "widgets",
			DateTime:          mustTime(t, "20240101000000"),
			Steps:             map[migrations.Direction]migrations.MigrationStep{migrations.Change: {Source: "step-one"}},
		}},
		{Status: state.Pending, Migration: migrations.Migration{
			ConfigurationName: "widgets",
			DateTime:          mustTime(t, "20240102000000"),
			Steps:             map[migrations.Direction]migrations.MigrationStep{migrations.Change: {Source: "step-two"}},
		}},
		{Status: state.Pending, Migration: migrations.Migration{
			ConfigurationName: "widgets",
			DateTime:          mustTime(t, "20240103000000"),
			Steps:             map[migrations.Direction]migrations.MigrationStep{migrations.Change: {Source: "step-three"}},
		}},
	}
	sharedFakeRunner.failOn["step-two"] = true

	results := e.Up(context.Background(), entries)
	require.Len(t, results, 3)
	assert.Equal(t, engine.Success, results[0].Tag)
	assert.Equal(t, engine.Failure, results[1].Tag)
	assert.Equal(t, engine.SkippedDueToEarlierError, results[2].Tag)
}

func TestDownReportsIrreversibleMigration(t *testing.T) {
	sharedFakeRunner.failOn = map[string]bool{}
	e, _ := newTestEngine(t)

	entries := []state.Entry{
		{Status: state.Applied, Migration: migrations.Migration{
			ConfigurationName: "widgets",
			DateTime:          mustTime(t, "20240101000000"),
			Steps:             map[migrations.Direction]migrations.MigrationStep{migrations.Change: {Source: "one-way"}},
		}},
	}

	results := e.Down(context.Background(), entries)
	require.Len(t, results, 1)
	assert.Equal(t, engine.IrreversibleMigration, results[0].Tag)
}

func TestOpenStateStoreRejectsMissingDatabaseNameWithoutDialing(t *testing.T) {
	cfg := config.Configuration{
		Runners: map[string]config.RunnerConfiguration{
			config.StateStoreName: {Runner: "PostgreSQL", IPOrHostname: "127.0.0.1", Port: 5432},
		},
	}

	_, conn, err := engine.OpenStateStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.ErrorAs(t, err, new(migrations.NoStateStoreDatabaseNameProvidedError))
}

func mustTime(t *testing.T, version string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(migrations.FormatStr, version, time.UTC)
	require.NoError(t, err)
	return parsed
}
