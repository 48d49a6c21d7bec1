// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/waypointdb/waypoint/pkg/reserved"
)

// timestampComponent matches the leading "<14 digits>_" of a path component,
// anchored at the start of the component so that a directory-form
// migration's step file (e.g. "up.sql", which carries no timestamp of its
// own) never matches against its own basename.
var timestampComponent = regexp.MustCompile(`^(\d{14})_(.+)$`)

// parsedComponent holds the pieces of a migration's path component: the
// timestamp, the human-readable name, the configuration name, and any
// advisory flags (see parseNameSegment for how the name segment is split).
// The grammar is:
//
//	<name>.<config>[.<flag>...]
type parsedComponent struct {
	DateTime time.Time
	Name     string
	Config   string
	Flags    []reserved.FlagWord
	Rest     string // whatever followed, for single-file migrations this is "<ext>"; for directory migrations this is empty (the extension lives in the child file)
}

// splitTimestamp extracts the 14-digit timestamp anchoring a path
// component, returning the remainder of the component after the
// timestamp's underscore. It does not care whether component is a
// directory name or a file basename: callers decide which component to
// feed it, which is what lets directory-form migrations read their
// timestamp off the parent directory instead of the leaf file.
func splitTimestamp(component string) (time.Time, string, bool) {
	m := timestampComponent.FindStringSubmatch(component)
	if m == nil {
		return time.Time{}, "", false
	}
	t, err := time.ParseInLocation(FormatStr, m[1], time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, m[2], true
}

// parseNameSegment splits "<name>.<config>.<flag>.<flag>...<rest>" where
// rest is whatever dot-segments remain once flags are consumed left to
// right after the config segment, stopping at the first segment that is not
// a reserved flag. The config segment is mandatory; flags are optional and are
// recognized only if they match the reserved flag vocabulary, so that an
// unrecognized trailing dot-segment is left in Rest for the caller
// (typically an extension) rather than silently swallowed.
func parseNameSegment(segment string) (name, config string, flags []reserved.FlagWord, rest string, ok bool) {
	parts := strings.Split(segment, ".")
	if len(parts) < 2 {
		return "", "", nil, "", false
	}

	name = parts[0]
	config = parts[1]
	remainder := parts[2:]

	i := 0
	for i < len(remainder) {
		f, found := reserved.FlagByName(remainder[i])
		if !found {
			break
		}
		flags = append(flags, f)
		i++
	}
	rest = strings.Join(remainder[i:], ".")
	return name, config, flags, rest, true
}

// ParseSingleFile parses a Change-direction migration filename of the form
// "<ts>_<name>.<config>[.<flag>...].<ext>", anchored at p's own basename.
func ParseSingleFile(p string) (version time.Time, name, config, ext string, flags []reserved.FlagWord, err error) {
	base := path.Base(p)
	ts, rest, ok := splitTimestamp(base)
	if !ok {
		return time.Time{}, "", "", "", nil, DiscoveryError{Path: p, Reason: "filename does not begin with a 14-digit timestamp"}
	}

	nm, cfg, fl, tail, ok := parseNameSegment(rest)
	if !ok || tail == "" {
		return time.Time{}, "", "", "", nil, DiscoveryError{Path: p, Reason: "filename is missing a configuration name or extension"}
	}

	return ts, nm, cfg, tail, fl, nil
}

// ParseDirectoryMigration parses the directory component of a directory-form
// migration, "<ts>_<name>.<config>[.<flag>...]". The timestamp and name
// live on the directory itself; the up/down step files underneath carry
// only their direction and extension ("up.sql", "down.sql").
func ParseDirectoryMigration(dirname string) (version time.Time, name, config string, flags []reserved.FlagWord, err error) {
	ts, rest, ok := splitTimestamp(dirname)
	if !ok {
		return time.Time{}, "", "", nil, DiscoveryError{Path: dirname, Reason: "directory name does not begin with a 14-digit timestamp"}
	}

	nm, cfg, fl, tail, ok := parseNameSegment(rest)
	if !ok {
		return time.Time{}, "", "", nil, DiscoveryError{Path: dirname, Reason: "directory name is missing a configuration name"}
	}
	if tail != "" {
		return time.Time{}, "", "", nil, DiscoveryError{Path: dirname, Reason: "directory-form migrations carry no extension of their own"}
	}

	return ts, nm, cfg, fl, nil
}

// ParseStepFile parses a directory-form migration's step filename, one of
// "up.<ext>" or "down.<ext>".
func ParseStepFile(p string) (direction Direction, ext string, err error) {
	base := path.Base(p)
	parts := strings.SplitN(base, ".", 2)
	if len(parts) != 2 {
		return 0, "", DiscoveryError{Path: p, Reason: "step file has no extension"}
	}

	switch parts[0] {
	case "up":
		return Up, parts[1], nil
	case "down":
		return Down, parts[1], nil
	default:
		return 0, "", DiscoveryError{Path: p, Reason: `step file must be named "up" or "down"`}
	}
}
