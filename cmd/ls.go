// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
)

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List migrations discovered on disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// ls works without a configuration file, listing whatever disk
			// discovery finds; when one happens to be readable, the same
			// runner/extension filter the other commands apply is shown here
			// too, so `ls` doesn't advertise migrations `migrate` would drop.
			cfg, _ := config.Load(flags.ConfigFile())

			disk := source.NewDisk(flags.MigrationsDirectory()).WithConfig(cfg).WithLogger(migrations.NewLogger())
			ms, err := disk.Migrations()
			if err != nil {
				return MigrationsDirError{Cause: err}
			}

			table := pterm.TableData{{"Version", "Configuration", "Flags", "Reversible"}}
			for _, m := range ms {
				reversible := "no"
				if m.Reversible() {
					reversible = "yes"
				}
				table = append(table, []string{m.Version(), m.ConfigurationName, m.FlagsAsString(), reversible})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
}
