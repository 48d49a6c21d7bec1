// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
)

const defaultConfigTemplate = `migrations_directory: ./migrations
mitre:
  _runner: PostgreSQL
  ip_or_hostname: localhost
  port: 5432
  username: postgres
  password: postgres
  database: myapp_development
`

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold a configuration file and an empty migrations directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := flags.ConfigFile()
			if _, err := os.Stat(configPath); err == nil {
				return ConfigError{Cause: os.ErrExist}
			}

			if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
				return ConfigError{Cause: err}
			}

			migrationsDir := flags.MigrationsDirectory()
			if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
				return MigrationsDirError{Cause: err}
			}

			pterm.Success.Println("created " + configPath)
			pterm.Success.Println("created " + migrationsDir)
			return nil
		},
	}
}
