// SPDX-License-Identifier: Apache-2.0

package state

import "fmt"

// Postgres is the Dialect implementation for a PostgreSQL-backed ledger.
type Postgres struct {
	Schema string
}

func (p Postgres) Name() string { return "postgres" }

func (p Postgres) QuoteIdentifier(name string) string { return quoteDouble(name) }

func (p Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (p Postgres) SchemaExistsQuery(schema string) (string, []interface{}) {
	return `SELECT 1 FROM information_schema.schemata WHERE schema_name = $1`, []interface{}{schema}
}

func (p Postgres) TableExistsQuery(schema, table string) (string, []interface{}) {
	return `SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`,
		[]interface{}{schema, table}
}

func (p Postgres) CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		version VARCHAR(14) NOT NULL,
		configuration_name TEXT NOT NULL,
		built_in BOOLEAN NOT NULL DEFAULT FALSE,
		up TEXT,
		down TEXT,
		change TEXT,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (version, configuration_name)
	)`, p.QuoteIdentifier(table))
}

func (p Postgres) VersionsQuery(table string) string {
	return fmt.Sprintf(`SELECT version, configuration_name, built_in, up, down, change FROM %s ORDER BY version`,
		p.QuoteIdentifier(table))
}

func (p Postgres) InsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (version, configuration_name, built_in, up, down, change) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.QuoteIdentifier(table))
}

func (p Postgres) DeleteSQL(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE version = $1 AND configuration_name = $2`, p.QuoteIdentifier(table))
}
