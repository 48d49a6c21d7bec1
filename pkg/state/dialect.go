// SPDX-License-Identifier: Apache-2.0

package state

import "fmt"

// Dialect isolates the SQL text that differs between the relational
// backends capable of hosting the ledger. Everything else — the diff
// algorithm, the record/remove sequencing — is shared in store.go.
type Dialect interface {
	// Name identifies the dialect for error messages and template
	// variables (e.g. "postgres", "mysql").
	Name() string

	// QuoteIdentifier quotes a table or column name for safe interpolation.
	QuoteIdentifier(name string) string

	// Placeholder returns the parameter placeholder for the nth
	// (1-indexed) bind variable in a query.
	Placeholder(n int) string

	// SchemaExistsQuery returns a query (and its single bind argument)
	// that selects one row if the given schema exists, zero rows
	// otherwise. Dialects without a schema concept (MySQL databases) treat
	// their database as the schema.
	SchemaExistsQuery(schema string) (query string, args []interface{})

	// TableExistsQuery returns a query (and its bind arguments) that
	// selects one row if the ledger table exists in schema, zero
	// otherwise.
	TableExistsQuery(schema, table string) (query string, args []interface{})

	// CreateTableSQL returns the same DDL the built-in bootstrap migration
	// supplies, for callers that create the ledger table directly (the
	// integration tests do). Store itself never calls it.
	CreateTableSQL(table string) string

	// VersionsQuery returns a query listing every (version,
	// configuration_name, built_in) row in the ledger table, plus the
	// up/down/change snapshots needed to reconstruct orphans.
	VersionsQuery(table string) string

	// InsertSQL returns the statement used to record a newly applied
	// migration, with bind positions already rendered via Placeholder.
	InsertSQL(table string) string

	// DeleteSQL returns the statement used to remove a migration's ledger
	// row once it has been unapplied.
	DeleteSQL(table string) string
}

func quoteDouble(name string) string {
	return fmt.Sprintf("%q", name)
}
