// SPDX-License-Identifier: Apache-2.0

// Package migrations holds the canonical in-memory migration model: the
// Migration value type, its Direction-keyed steps, the filename grammar that
// produces them, and the validation invariants they must satisfy.
package migrations

import (
	"sort"
	"strings"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/waypointdb/waypoint/pkg/reserved"
)

// FormatStr is the canonical timestamp layout migration filenames encode
// their version in, and the layout Version() re-renders it with.
const FormatStr = "20060102150405"

// Direction identifies which side of a migration a step belongs to.
type Direction int

const (
	Up Direction = iota
	Down
	Change
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// MigrationStep is one runnable unit of a migration: the path it was read
// from (for error messages) and its raw, unrendered source text.
type MigrationStep struct {
	Path   string
	Source string
}

// Template parses the step's source as a Mustache template. Parsing is
// deferred to apply time so that a syntax error in a step nobody ever runs
// (an orphaned down step, say) doesn't block discovery.
func (s MigrationStep) Template() (*mustache.Template, error) {
	tmpl, err := mustache.ParseString(s.Source)
	if err != nil {
		return nil, TemplateError{Reason: err.Error(), Path: s.Path}
	}
	return tmpl, nil
}

// Render parses and evaluates the step's source against ctx, returning the
// text a runner should execute.
func (s MigrationStep) Render(ctx interface{}) (string, error) {
	tmpl, err := s.Template()
	if err != nil {
		return "", err
	}
	out, err := tmpl.Render(ctx)
	if err != nil {
		return "", TemplateError{Reason: err.Error(), Path: s.Path}
	}
	return out, nil
}

// Migration is a single named point in the ledger: a timestamp, the
// configuration it targets, and the steps available at that point.
type Migration struct {
	DateTime          time.Time
	ConfigurationName string
	BuiltIn           bool
	Extension         string
	Flags             []reserved.FlagWord
	Steps             map[Direction]MigrationStep
}

// Version renders the migration's timestamp the way it appears (and must
// compare, lexically and chronologically identically) in filenames and in
// the ledger.
func (m Migration) Version() string {
	return m.DateTime.UTC().Format(FormatStr)
}

// FlagsAsString renders the migration's advisory flags the way they appear
// in a filename, e.g. ".data.risky".
func (m Migration) FlagsAsString() string {
	if len(m.Flags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range m.Flags {
		b.WriteByte('.')
		b.WriteString(f.Name)
	}
	return b.String()
}

// Validate checks the invariants a Migration must hold regardless of where
// it came from: it must carry at least one step, and a Change step is
// mutually exclusive with an Up step (Change is its own forward direction).
func (m Migration) Validate() error {
	_, hasUp := m.Steps[Up]
	_, hasChange := m.Steps[Change]
	if hasUp && hasChange {
		return MalformedMigrationError{Reason: "migration defines both an up step and a change step"}
	}
	if len(m.Steps) == 0 {
		return MalformedMigrationError{Reason: "migration has no steps"}
	}
	return nil
}

// ForwardStep returns the step that moves the ledger forward: Change if
// present, otherwise Up.
func (m Migration) ForwardStep() (MigrationStep, bool) {
	if s, ok := m.Steps[Change]; ok {
		return s, true
	}
	s, ok := m.Steps[Up]
	return s, ok
}

// Reversible reports whether the migration has an explicit Down step. A
// Change migration is never reversible even if a stray down step exists
// alongside it, since Change is defined as self-inverse-less.
func (m Migration) Reversible() bool {
	if _, ok := m.Steps[Change]; ok {
		return false
	}
	_, ok := m.Steps[Down]
	return ok
}

// Base returns the portion of a migration's identity that's stable across
// directions and configurations: its version string.
func (m Migration) Base() string {
	return m.Version()
}

// List is a sortable collection of migrations, ordered chronologically by
// DateTime (and therefore by Version, since the two agree).
type List []Migration

func (l List) Len() int           { return len(l) }
func (l List) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
func (l List) Less(i, j int) bool { return l[i].DateTime.Before(l[j].DateTime) }

// SortedByDateTime returns a copy of ms sorted chronologically. Migrations
// sharing a DateTime keep their relative input order.
func SortedByDateTime(ms []Migration) []Migration {
	out := make(List, len(ms))
	copy(out, ms)
	sort.Stable(out)
	return out
}
