// SPDX-License-Identifier: Apache-2.0

// Package source discovers migrations: from a directory on disk, or from
// the set of built-in migrations embedded in the binary.
package source

import "github.com/waypointdb/waypoint/pkg/migrations"

// Source produces the full set of migrations available to an engine run.
// A disk source and the built-in source are both Sources; an engine
// combines their output before diffing it against the ledger.
type Source interface {
	Migrations() ([]migrations.Migration, error)
}

// Func adapts a plain function to Source.
type Func func() ([]migrations.Migration, error)

func (f Func) Migrations() ([]migrations.Migration, error) { return f() }

// Merge collects migrations from every source, in order, and sorts the
// combined result chronologically. Sources are expected not to overlap in
// Version(); overlap detection is the caller's job (it needs ledger
// context a Source doesn't have).
func Merge(sources ...Source) ([]migrations.Migration, error) {
	var all []migrations.Migration
	for _, s := range sources {
		ms, err := s.Migrations()
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return migrations.SortedByDateTime(all), nil
}
