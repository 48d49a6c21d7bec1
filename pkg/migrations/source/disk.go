// SPDX-License-Identifier: Apache-2.0

package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crackcomm/go-gitignore"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
)

// ignoreFileName is the name of the optional ignore file at the root of a
// migrations directory, honored the same way a .gitignore is: any path it
// matches is skipped during discovery rather than rejected as malformed.
const ignoreFileName = ".mitreignore"

// Disk discovers migrations by walking a directory on disk.
type Disk struct {
	Root string

	// Config, when set, gates every discovered migration on whether its
	// configuration name resolves to a configured runner that accepts
	// its file extension. Left zero-valued, no candidate is filtered on
	// this basis, since there's nothing configured to check against.
	Config config.Configuration

	// Logger receives a warning for every candidate dropped during the
	// walk. Defaults to a no-op logger when unset.
	Logger migrations.Logger
}

// NewDisk returns a Disk source rooted at dir.
func NewDisk(dir string) Disk {
	return Disk{Root: dir}
}

// WithConfig attaches the configuration used to check invariant #2 against:
// a migration's configuration name must resolve to a runner whose driver
// accepts the migration's extension.
func (d Disk) WithConfig(cfg config.Configuration) Disk {
	d.Config = cfg
	return d
}

// WithLogger attaches the logger that receives discovery warnings.
func (d Disk) WithLogger(logger migrations.Logger) Disk {
	d.Logger = logger
	return d
}

func (d Disk) logger() migrations.Logger {
	if d.Logger == nil {
		return migrations.NewNoopLogger()
	}
	return d.Logger
}

// Migrations walks d.Root and parses every migration it finds, in both the
// single-file and directory forms described by the filename grammar.
// Rejection is non-fatal: a candidate that fails to parse, or that doesn't
// resolve to a runner accepting its extension, is warned about and
// skipped rather than aborting the whole walk.
func (d Disk) Migrations() ([]migrations.Migration, error) {
	ignore, err := loadIgnore(d.Root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, migrations.DiscoveryError{Path: d.Root, Reason: err.Error()}
	}

	byDir := map[string][]fs.DirEntry{}
	var singleFiles []string
	var dirNames []string

	for _, e := range entries {
		rel := e.Name()
		if ignore != nil && ignore.MatchesPath(rel) {
			continue
		}
		if e.Name() == ignoreFileName {
			continue
		}

		full := filepath.Join(d.Root, rel)
		if e.IsDir() {
			children, err := os.ReadDir(full)
			if err != nil {
				return nil, migrations.DiscoveryError{Path: full, Reason: err.Error()}
			}
			byDir[rel] = children
			dirNames = append(dirNames, rel)
			continue
		}
		singleFiles = append(singleFiles, rel)
	}

	var out []migrations.Migration

	for _, name := range singleFiles {
		path := filepath.Join(d.Root, name)
		m, err := parseSingleFileMigration(path)
		if err != nil {
			d.logger().Warn("skipping migration candidate", "path", path, "reason", err.Error())
			continue
		}
		if !d.acceptedByRunner(m) {
			d.logger().Warn("skipping migration: configuration name does not resolve to a runner accepting its extension",
				"path", path, "configuration", m.ConfigurationName, "extension", m.Extension)
			continue
		}
		out = append(out, m)
	}

	sort.Strings(dirNames)
	for _, dirName := range dirNames {
		path := filepath.Join(d.Root, dirName)
		m, err := parseDirectoryMigration(d.Root, dirName, byDir[dirName])
		if err != nil {
			d.logger().Warn("skipping migration candidate", "path", path, "reason", err.Error())
			continue
		}
		if !d.acceptedByRunner(m) {
			d.logger().Warn("skipping migration: configuration name does not resolve to a runner accepting its extension",
				"path", path, "configuration", m.ConfigurationName, "extension", m.Extension)
			continue
		}
		out = append(out, m)
	}

	return migrations.SortedByDateTime(out), nil
}

// acceptedByRunner reports whether m satisfies invariant #2: its
// configuration name resolves to a configured runner whose driver accepts
// its file extension. With no Config attached, every candidate passes,
// since there's no configured runner set to check against.
func (d Disk) acceptedByRunner(m migrations.Migration) bool {
	if d.Config.Runners == nil {
		return true
	}
	rc, ok := d.Config.Get(m.ConfigurationName)
	if !ok {
		return false
	}
	word, ok := reserved.RunnerByName(rc.RunnerName())
	if !ok {
		return false
	}
	return word.AcceptsExtension(m.Extension)
}

func loadIgnore(root string) (*gitignore.GitIgnore, error) {
	path := filepath.Join(root, ignoreFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, migrations.DiscoveryError{Path: path, Reason: err.Error()}
	}
	ig, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, migrations.DiscoveryError{Path: path, Reason: err.Error()}
	}
	return ig, nil
}

func parseSingleFileMigration(path string) (migrations.Migration, error) {
	ts, name, config, ext, flags, err := migrations.ParseSingleFile(path)
	if err != nil {
		return migrations.Migration{}, err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return migrations.Migration{}, migrations.DiscoveryError{Path: path, Reason: err.Error()}
	}

	m := migrations.Migration{
		DateTime:          ts,
		ConfigurationName: config,
		Extension:         ext,
		Flags:             flags,
		Steps: map[migrations.Direction]migrations.MigrationStep{
			migrations.Change: {Path: path, Source: string(body)},
		},
	}
	_ = name

	if err := m.Validate(); err != nil {
		return migrations.Migration{}, err
	}
	return m, nil
}

func parseDirectoryMigration(root, dirName string, children []fs.DirEntry) (migrations.Migration, error) {
	dirPath := filepath.Join(root, dirName)
	ts, name, config, flags, err := migrations.ParseDirectoryMigration(dirName)
	if err != nil {
		return migrations.Migration{}, err
	}
	_ = name

	steps := map[migrations.Direction]migrations.MigrationStep{}
	var exts []string

	for _, c := range children {
		if c.IsDir() {
			continue
		}
		childPath := filepath.Join(dirPath, c.Name())
		direction, ext, err := migrations.ParseStepFile(childPath)
		if err != nil {
			return migrations.Migration{}, err
		}

		body, err := os.ReadFile(childPath)
		if err != nil {
			return migrations.Migration{}, migrations.DiscoveryError{Path: childPath, Reason: err.Error()}
		}

		steps[direction] = migrations.MigrationStep{Path: childPath, Source: string(body)}
		exts = append(exts, ext)
	}

	if len(exts) > 1 && exts[0] != exts[1] {
		return migrations.Migration{}, migrations.DiscoveryError{
			Path:   dirPath,
			Reason: "up and down steps must share the same file extension: got " + strings.Join(exts, ", "),
		}
	}

	m := migrations.Migration{
		DateTime:          ts,
		ConfigurationName: config,
		Flags:             flags,
		Steps:             steps,
	}
	if len(exts) > 0 {
		m.Extension = exts[0]
	}
	if err := m.Validate(); err != nil {
		return migrations.Migration{}, err
	}
	return m, nil
}
