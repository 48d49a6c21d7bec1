// SPDX-License-Identifier: Apache-2.0

package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
	"github.com/waypointdb/waypoint/pkg/reserved"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestDiskDiscoversSingleFileMigration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.mariadb.sql", "CREATE INDEX idx ON t (c);")

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "mariadb", ms[0].ConfigurationName)
	_, ok := ms[0].Steps[migrations.Change]
	assert.True(t, ok)
}

func TestDiskDiscoversDirectoryMigration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.mariadb/up.sql", "CREATE INDEX idx ON t (c);")
	writeFile(t, dir, "20240102150405_add_index.mariadb/down.sql", "DROP INDEX idx;")

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].Reversible())
}

func TestDiskDropsMismatchedStepExtensionsInsteadOfFailing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.mariadb/up.sql", "CREATE INDEX idx ON t (c);")
	writeFile(t, dir, "20240102150405_add_index.mariadb/down.py", "# drop index")

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestDiskSkipsUnparseableFileAndContinuesDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "not a migration")
	writeFile(t, dir, "20240102150405_add_index.mariadb.sql", "CREATE INDEX idx ON t (c);")

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "mariadb", ms[0].ConfigurationName)
}

func TestDiskDropsMigrationWhoseConfigurationDoesNotAcceptItsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.widgets.sql", "CREATE INDEX idx ON t (c);")

	cfg := config.Configuration{
		Runners: map[string]config.RunnerConfiguration{
			"widgets": {Runner: reserved.Redis},
		},
	}

	ms, err := source.NewDisk(dir).WithConfig(cfg).Migrations()
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestDiskKeepsMigrationWhoseConfigurationAcceptsItsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.widgets.sql", "CREATE INDEX idx ON t (c);")

	cfg := config.Configuration{
		Runners: map[string]config.RunnerConfiguration{
			"widgets": {Runner: reserved.PostgreSQL},
		},
	}

	ms, err := source.NewDisk(dir).WithConfig(cfg).Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 1)
}

func TestDiskHonorsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20240102150405_add_index.mariadb.sql", "CREATE INDEX idx ON t (c);")
	writeFile(t, dir, "scratch.txt", "not a migration")
	writeFile(t, dir, ".mitreignore", "scratch.txt\n")

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}
