// SPDX-License-Identifier: Apache-2.0

// Package exitcode defines the process exit codes the CLI returns,
// distinguishing the category of failure for scripts and CI that invoke
// it.
package exitcode

const (
	// OK is returned on success.
	OK = 0

	// ConfigProblem is returned when the configuration file can't be read
	// or decoded, when init would overwrite an existing one, and for any
	// error that fits no other category.
	ConfigProblem = 150

	// MigrationsDirProblem is returned when the migrations directory can't
	// be read, or a migration can't be scaffolded into it. Files that fail
	// the filename grammar are skipped with a warning, not reported here.
	MigrationsDirProblem = 151

	// NoConfigSpecified is returned when no configuration file exists at
	// the given (or default) path.
	NoConfigSpecified = 152

	// StateStoreProblem is returned when the state store can't be opened
	// (including a missing or unsupported `mitre` entry) or its ledger
	// can't be read.
	StateStoreProblem = 153

	// MigrationApplicationError is returned when one or more migrations
	// failed to apply or unapply.
	MigrationApplicationError = 124
)
