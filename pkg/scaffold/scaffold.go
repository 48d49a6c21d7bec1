// SPDX-License-Identifier: Apache-2.0

// Package scaffold generates empty migration files on disk, following the
// same filename grammar the discovery source parses.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
)

// Options describes the migration to scaffold.
type Options struct {
	Directory         string
	Name              string
	ConfigurationName string
	Extension         string
	Flags             []string
	Directory2Step    bool // true for the up/down directory form, false for a single Change file
	At                time.Time
}

// Generate writes the scaffolded file(s) to disk and returns the path(s)
// created.
func Generate(opts Options) ([]string, error) {
	if opts.Name == "" {
		return nil, migrations.DiscoveryError{Path: opts.Directory, Reason: "migration name must not be empty"}
	}
	if opts.ConfigurationName == "" {
		return nil, migrations.DiscoveryError{Path: opts.Directory, Reason: "configuration name must not be empty"}
	}
	if opts.Extension == "" {
		return nil, migrations.DiscoveryError{Path: opts.Directory, Reason: "extension must not be empty"}
	}

	at := opts.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	version := at.Format(migrations.FormatStr)

	var flagSuffix strings.Builder
	for _, f := range opts.Flags {
		if _, ok := reserved.FlagByName(f); !ok {
			return nil, migrations.DiscoveryError{Path: opts.Directory, Reason: fmt.Sprintf("unrecognized flag %q", f)}
		}
		flagSuffix.WriteByte('.')
		flagSuffix.WriteString(f)
	}

	base := fmt.Sprintf("%s_%s.%s%s", version, opts.Name, opts.ConfigurationName, flagSuffix.String())

	if !opts.Directory2Step {
		path := filepath.Join(opts.Directory, base+"."+opts.Extension)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return nil, migrations.DiscoveryError{Path: path, Reason: err.Error()}
		}
		return []string{path}, nil
	}

	dir := filepath.Join(opts.Directory, base)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, migrations.DiscoveryError{Path: dir, Reason: err.Error()}
	}

	var created []string
	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(dir, direction+"."+opts.Extension)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return nil, migrations.DiscoveryError{Path: path, Reason: err.Error()}
		}
		created = append(created, path)
	}
	return created, nil
}
