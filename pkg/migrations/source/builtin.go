// SPDX-License-Identifier: Apache-2.0

package source

import (
	"embed"
	"io/fs"
	"sort"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
)

//go:embed builtinfiles/migrations/*.sql
var builtinFiles embed.FS

const builtinFilesRoot = "builtinfiles/migrations"

// Builtin is the Source of migrations shipped inside the binary: the
// bootstrap migration(s) that create the ledger table itself. These run
// before any user migration is considered and are marked BuiltIn so the
// ledger and status reports can tell them apart from user migrations.
type Builtin struct {
	// Config, when set, is checked against invariant #2 the same way a
	// Disk source is. Unlike a disk migration, a built-in that fails the
	// check is logged at error level but not dropped: it's the
	// bootstrap migration for the ledger itself, and dropping it would
	// make the ledger impossible to stand up.
	Config config.Configuration

	// Logger receives the error-level log above. Defaults to a no-op
	// logger when unset.
	Logger migrations.Logger
}

// WithConfig attaches the configuration used to check invariant #2.
func (b Builtin) WithConfig(cfg config.Configuration) Builtin {
	b.Config = cfg
	return b
}

// WithLogger attaches the logger that receives invariant #2 violations.
func (b Builtin) WithLogger(logger migrations.Logger) Builtin {
	b.Logger = logger
	return b
}

func (b Builtin) logger() migrations.Logger {
	if b.Logger == nil {
		return migrations.NewNoopLogger()
	}
	return b.Logger
}

func (b Builtin) acceptedByRunner(m migrations.Migration) bool {
	if b.Config.Runners == nil {
		return true
	}
	rc, ok := b.Config.Get(m.ConfigurationName)
	if !ok {
		return false
	}
	word, ok := reserved.RunnerByName(rc.RunnerName())
	if !ok {
		return false
	}
	return word.AcceptsExtension(m.Extension)
}

// Migrations returns the embedded bootstrap migrations, parsed with the
// same grammar a disk source uses. A parse failure here is fatal: it means
// the shipped binary itself carries a broken migration file.
func (b Builtin) Migrations() ([]migrations.Migration, error) {
	entries, err := fs.ReadDir(builtinFiles, builtinFilesRoot)
	if err != nil {
		return nil, migrations.StateStoreError{Reason: "reading embedded built-in migrations", Cause: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []migrations.Migration
	for _, name := range names {
		path := builtinFilesRoot + "/" + name
		ts, _, config, ext, flags, err := migrations.ParseSingleFile(path)
		if err != nil {
			return nil, err
		}

		body, err := fs.ReadFile(builtinFiles, path)
		if err != nil {
			return nil, migrations.StateStoreError{Reason: "reading embedded built-in migration " + name, Cause: err}
		}

		m := migrations.Migration{
			DateTime:          ts,
			ConfigurationName: config,
			BuiltIn:           true,
			Extension:         ext,
			Flags:             flags,
			Steps: map[migrations.Direction]migrations.MigrationStep{
				migrations.Change: {Path: path, Source: string(body)},
			},
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if !b.acceptedByRunner(m) {
			b.logger().Error("built-in migration does not resolve to a runner accepting its extension",
				"path", path, "configuration", m.ConfigurationName, "extension", m.Extension)
		}
		out = append(out, m)
	}

	return migrations.SortedByDateTime(out), nil
}
