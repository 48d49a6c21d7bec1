// SPDX-License-Identifier: Apache-2.0

// Package state implements the ledger: the relational table tracking which
// migrations have been applied, and the diff between it and the set of
// migrations discovered on disk (or embedded as built-ins).
package state

import "github.com/waypointdb/waypoint/pkg/migrations"

// Status classifies a migration relative to the ledger.
type Status int

const (
	// Pending migrations are known (discovered or built-in) but have no
	// corresponding ledger row.
	Pending Status = iota
	// Applied migrations have a matching ledger row.
	Applied
	// Orphaned migrations have a ledger row but no corresponding migration
	// was discovered; they're reconstructed from the row's own snapshot
	// columns so they can still be torn down.
	Orphaned
	// FilteredOut migrations were discovered but excluded from this run by
	// a configuration-name filter; they are neither pending nor applied as
	// far as this run is concerned.
	FilteredOut
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case Orphaned:
		return "orphaned"
	case FilteredOut:
		return "filtered_out"
	default:
		return "unknown"
	}
}

// Entry pairs a migration with its status relative to the ledger.
type Entry struct {
	Migration migrations.Migration
	Status    Status
}
