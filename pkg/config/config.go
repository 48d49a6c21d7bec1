// SPDX-License-Identifier: Apache-2.0

// Package config defines the value types the core consumes once a
// configuration file has been decoded, plus Load (load.go), the thin YAML
// file decoder the CLI calls to produce them.
package config

import (
	"encoding/json"
	"strings"
)

// StateStoreName is the reserved configuration key that must designate the
// runner used as the migration ledger's backend.
const StateStoreName = "mitre"

// RunnerConfiguration carries the attributes needed to construct a runner.
// Not every field applies to every driver; unused fields are simply left
// zero-valued.
type RunnerConfiguration struct {
	Runner         string `yaml:"_runner" json:"_runner"`
	Database       string `yaml:"database,omitempty" json:"database,omitempty"`
	DatabaseNumber int    `yaml:"database_number,omitempty" json:"database_number,omitempty"`
	Index          string `yaml:"index,omitempty" json:"index,omitempty"`
	IPOrHostname   string `yaml:"ip_or_hostname,omitempty" json:"ip_or_hostname,omitempty"`
	Port           int    `yaml:"port,omitempty" json:"port,omitempty"`
	Username       string `yaml:"username,omitempty" json:"username,omitempty"`
	Password       string `yaml:"password,omitempty" json:"password,omitempty"`
	Schema         string `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// SchemaOrDefault returns the configured Postgres schema, defaulting to
// "public" when the configuration leaves it unset.
func (rc RunnerConfiguration) SchemaOrDefault() string {
	if rc.Schema == "" {
		return "public"
	}
	return rc.Schema
}

// RunnerName returns the configured driver selector, ready for
// case-insensitive comparison against the reserved vocabulary.
func (rc RunnerConfiguration) RunnerName() string {
	return strings.TrimSpace(rc.Runner)
}

// Configuration is the top-level, already-decoded configuration value the
// core operates against.
type Configuration struct {
	MigrationsDirectory string                         `yaml:"migrations_directory" json:"migrations_directory"`
	Runners             map[string]RunnerConfiguration  `yaml:"-" json:"-"`
}

// Get looks up a configured runner by configuration name.
func (c Configuration) Get(name string) (RunnerConfiguration, bool) {
	rc, ok := c.Runners[name]
	return rc, ok
}

// StateStore returns the RunnerConfiguration designated by the reserved
// `mitre` entry.
func (c Configuration) StateStore() (RunnerConfiguration, bool) {
	return c.Get(StateStoreName)
}

// UnmarshalJSON implements json.Unmarshaler so that the flat
// `name: {_runner: ..., ...}` mapping in the configuration file (decoded via
// sigs.k8s.io/yaml, which converts YAML to JSON before decoding) becomes the
// Runners map, while `migrations_directory` is read as a sibling field.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Runners = map[string]RunnerConfiguration{}
	for key, value := range raw {
		if key == "migrations_directory" {
			if err := json.Unmarshal(value, &c.MigrationsDirectory); err != nil {
				return err
			}
			continue
		}

		var rc RunnerConfiguration
		if err := json.Unmarshal(value, &rc); err != nil {
			continue
		}
		c.Runners[key] = rc
	}

	return nil
}
