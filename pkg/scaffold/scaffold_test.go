// SPDX-License-Identifier: Apache-2.0

package scaffold_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
	"github.com/waypointdb/waypoint/pkg/scaffold"
)

func TestGenerateSingleFile(t *testing.T) {
	dir := t.TempDir()
	at, err := time.ParseInLocation(migrations.FormatStr, "20240102150405", time.UTC)
	require.NoError(t, err)

	paths, err := scaffold.Generate(scaffold.Options{
		Directory:         dir,
		Name:              "add_index",
		ConfigurationName: "mariadb",
		Extension:         "sql",
		Flags:             []string{"risky"},
		At:                at,
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "20240102150405_add_index.mariadb.risky.sql")

	_, err = os.Stat(paths[0])
	assert.NoError(t, err)
}

func TestGenerateDirectoryForm(t *testing.T) {
	dir := t.TempDir()
	at, err := time.ParseInLocation(migrations.FormatStr, "20240102150405", time.UTC)
	require.NoError(t, err)

	paths, err := scaffold.Generate(scaffold.Options{
		Directory:         dir,
		Name:              "add_index",
		ConfigurationName: "mariadb",
		Extension:         "sql",
		Directory2Step:    true,
		At:                at,
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	ms, err := source.NewDisk(dir).Migrations()
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].Reversible())
}
