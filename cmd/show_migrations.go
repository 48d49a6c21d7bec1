// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
)

func showMigrationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-migrations",
		Short: "Show every known migration's status against the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, closer, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer closer()

			known, err := source.Merge(
				source.Builtin{}.WithConfig(e.Config).WithLogger(migrations.NewLogger()),
				source.NewDisk(flags.MigrationsDirectory()).WithConfig(e.Config).WithLogger(migrations.NewLogger()),
			)
			if err != nil {
				return MigrationsDirError{Cause: err}
			}

			entries, err := e.Plan(ctx, known, flags.ConfigurationName())
			if err != nil {
				return StateStoreOpenError{Cause: err}
			}

			table := pterm.TableData{{"Version", "Configuration", "Built-in", "Status"}}
			for _, entry := range entries {
				builtIn := "no"
				if entry.Migration.BuiltIn {
					builtIn = "yes"
				}
				table = append(table, []string{
					entry.Migration.Version(),
					entry.Migration.ConfigurationName,
					builtIn,
					entry.Status.String(),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
}
