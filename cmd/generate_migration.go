// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/scaffold"
)

func generateMigrationCmd() *cobra.Command {
	var name, configName, extension, flagList string
	var directoryForm bool

	cmd := &cobra.Command{
		Use:   "generate-migration",
		Short: "Scaffold a new migration file (or up/down pair)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var parsedFlags []string
			if flagList != "" {
				parsedFlags = strings.Split(flagList, ",")
			}

			paths, err := scaffold.Generate(scaffold.Options{
				Directory:         flags.MigrationsDirectory(),
				Name:              name,
				ConfigurationName: configName,
				Extension:         extension,
				Flags:             parsedFlags,
				Directory2Step:    directoryForm,
			})
			if err != nil {
				return MigrationsDirError{Cause: err}
			}

			for _, p := range paths {
				pterm.Success.Println("created " + p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Migration name")
	cmd.Flags().StringVar(&configName, "config-name", "", "Configuration name the migration targets")
	cmd.Flags().StringVar(&extension, "extension", "sql", "File extension for the generated step(s)")
	cmd.Flags().StringVar(&flagList, "flags", "", "Comma-separated advisory flags (data,long,risky)")
	cmd.Flags().BoolVar(&directoryForm, "directory", false, "Scaffold an up/down directory pair instead of a single Change file")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("config-name")

	return cmd
}
