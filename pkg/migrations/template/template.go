// SPDX-License-Identifier: Apache-2.0

// Package template builds the rendering context a migration step's
// Mustache template is evaluated against.
package template

// Context carries the variables available to every step template,
// regardless of which runner applies it. State-store-specific keys (e.g.
// mariadb_migration_state_table_name) are populated only when the step's
// configuration is the designated state store, so a template that
// references one outside that context renders it as empty rather than
// failing.
type Context map[string]interface{}

// StateStoreTableVar is the context key carrying the ledger table name,
// namespaced per dialect so a single template can be shared across a
// MariaDB and a PostgreSQL state store without editing it.
func StateStoreTableVar(dialect string) string {
	return dialect + "_migration_state_table_name"
}

// New builds a base context shared by every step: the active environment
// label and the configuration name the step is running against.
func New(environment, configurationName string) Context {
	return Context{
		"environment":        environment,
		"configuration_name": configurationName,
	}
}

// WithStateStoreTable returns a copy of c with the ledger table name bound
// under the dialect-specific key.
func (c Context) WithStateStoreTable(dialect, tableName string) Context {
	out := c.clone()
	out[StateStoreTableVar(dialect)] = tableName
	return out
}

// WithVar returns a copy of c with an additional, caller-supplied key set.
// Used by runners that expose extra template variables of their own (for
// example a runner-specific connection alias).
func (c Context) WithVar(key string, value interface{}) Context {
	out := c.clone()
	out[key] = value
	return out
}

func (c Context) clone() Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}
