// SPDX-License-Identifier: Apache-2.0

// Package flags binds the root command's persistent flags to viper so
// every subcommand reads configuration the same way, whether it came from
// a flag, an environment variable, or the flag's default.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ConfigFile() string {
	return viper.GetString("CONFIG_FILE")
}

func MigrationsDirectory() string {
	return viper.GetString("MIGRATIONS_DIRECTORY")
}

func Environment() string {
	if e := viper.GetString("ENVIRONMENT"); e != "" {
		return e
	}
	return "development"
}

func ConfigurationName() string {
	return viper.GetString("CONFIGURATION_NAME")
}

// Bind registers the flags shared by every subcommand and binds them to
// viper under the WAYPOINT_ prefix, so WAYPOINT_CONFIG_FILE etc. override
// whatever the flag default was.
func Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "mitre.config.yml", "Path to the configuration file")
	cmd.PersistentFlags().String("migrations-dir", "./migrations", "Path to the migrations directory")
	cmd.PersistentFlags().String("environment", "", "Environment label threaded into migration templates")
	cmd.PersistentFlags().String("only", "", "Restrict the run to a single configuration name")

	viper.BindPFlag("CONFIG_FILE", cmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("MIGRATIONS_DIRECTORY", cmd.PersistentFlags().Lookup("migrations-dir"))
	viper.BindPFlag("ENVIRONMENT", cmd.PersistentFlags().Lookup("environment"))
	viper.BindPFlag("CONFIGURATION_NAME", cmd.PersistentFlags().Lookup("only"))
}
