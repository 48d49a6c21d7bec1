// SPDX-License-Identifier: Apache-2.0

package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/migrations"
)

func TestParseSingleFile(t *testing.T) {
	ts, name, config, ext, flags, err := migrations.ParseSingleFile(
		"/migrations/20240102150405_add_index.mariadb.risky.sql")
	require.NoError(t, err)
	assert.Equal(t, "20240102150405", ts.Format(migrations.FormatStr))
	assert.Equal(t, "add_index", name)
	assert.Equal(t, "mariadb", config)
	assert.Equal(t, "sql", ext)
	require.Len(t, flags, 1)
	assert.Equal(t, "risky", flags[0].Name)
}

func TestParseSingleFileRejectsMissingTimestamp(t *testing.T) {
	_, _, _, _, _, err := migrations.ParseSingleFile("add_index.mariadb.sql")
	assert.Error(t, err)
}

func TestParseSingleFileRejectsNoExtension(t *testing.T) {
	_, _, _, _, _, err := migrations.ParseSingleFile("20240102150405_add_index.mariadb")
	assert.Error(t, err)
}

func TestParseDirectoryMigration(t *testing.T) {
	ts, name, config, flags, err := migrations.ParseDirectoryMigration("20240102150405_add_index.mariadb.data")
	require.NoError(t, err)
	assert.Equal(t, "20240102150405", ts.Format(migrations.FormatStr))
	assert.Equal(t, "add_index", name)
	assert.Equal(t, "mariadb", config)
	require.Len(t, flags, 1)
	assert.Equal(t, "data", flags[0].Name)
}

func TestParseDirectoryMigrationRejectsTrailingExtension(t *testing.T) {
	_, _, _, _, err := migrations.ParseDirectoryMigration("20240102150405_add_index.mariadb.sql")
	assert.Error(t, err)
}

func TestParseStepFileDoesNotRequireOwnTimestamp(t *testing.T) {
	// Directory-form step files (e.g. up.sql) carry no timestamp of their
	// own: it's read off the parent directory, not the leaf file.
	direction, ext, err := migrations.ParseStepFile("/migrations/20240102150405_add_index.mariadb/up.sql")
	require.NoError(t, err)
	assert.Equal(t, migrations.Up, direction)
	assert.Equal(t, "sql", ext)

	direction, ext, err = migrations.ParseStepFile("down.sql")
	require.NoError(t, err)
	assert.Equal(t, migrations.Down, direction)
	assert.Equal(t, "sql", ext)
}

func TestParseStepFileRejectsUnknownDirection(t *testing.T) {
	_, _, err := migrations.ParseStepFile("sideways.sql")
	assert.Error(t, err)
}
