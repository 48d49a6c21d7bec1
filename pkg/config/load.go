// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"

	"sigs.k8s.io/yaml"
)

// Load reads and decodes the configuration file at path. sigs.k8s.io/yaml
// converts the YAML document to JSON internally, which is why
// Configuration implements json.Unmarshaler rather than a YAML-specific
// interface.
func Load(path string) (Configuration, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}

	var cfg Configuration
	if err := yaml.Unmarshal(body, &cfg); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}
