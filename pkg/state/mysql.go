// SPDX-License-Identifier: Apache-2.0

package state

import "fmt"

// MySQL is the Dialect implementation for a MariaDB/MySQL-backed ledger.
// MariaDB and MySQL share an information_schema closely enough that one
// dialect covers both; the reserved runner name "MariaDB" simply selects
// this dialect at configuration time.
type MySQL struct {
	Database string
}

func (m MySQL) Name() string { return "mysql" }

func (m MySQL) QuoteIdentifier(name string) string { return "`" + name + "`" }

func (m MySQL) Placeholder(n int) string { return "?" }

func (m MySQL) SchemaExistsQuery(schema string) (string, []interface{}) {
	return `SELECT 1 FROM information_schema.schemata WHERE schema_name = ?`, []interface{}{schema}
}

func (m MySQL) TableExistsQuery(schema, table string) (string, []interface{}) {
	return `SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`,
		[]interface{}{schema, table}
}

func (m MySQL) CreateTableSQL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n"+
		"\t\tid BIGINT AUTO_INCREMENT PRIMARY KEY,\n"+
		"\t\tversion VARCHAR(14) NOT NULL,\n"+
		"\t\tconfiguration_name VARCHAR(255) NOT NULL,\n"+
		"\t\tbuilt_in BOOLEAN NOT NULL DEFAULT FALSE,\n"+
		"\t\tup MEDIUMTEXT,\n"+
		"\t\tdown MEDIUMTEXT,\n"+
		"\t\tchange MEDIUMTEXT,\n"+
		"\t\tapplied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,\n"+
		"\t\tUNIQUE KEY uniq_version_configuration (version, configuration_name)\n"+
		"\t)", m.QuoteIdentifier(table))
}

func (m MySQL) VersionsQuery(table string) string {
	return fmt.Sprintf(`SELECT version, configuration_name, built_in, up, down, change FROM %s ORDER BY version`,
		m.QuoteIdentifier(table))
}

func (m MySQL) InsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (version, configuration_name, built_in, up, down, change) VALUES (?, ?, ?, ?, ?, ?)`,
		m.QuoteIdentifier(table))
}

func (m MySQL) DeleteSQL(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE version = ? AND configuration_name = ?`, m.QuoteIdentifier(table))
}
