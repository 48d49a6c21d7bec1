// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
	"github.com/waypointdb/waypoint/pkg/state"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Render a status dashboard summarizing the ledger",
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

			counts := map[state.Status]int{}
			perConfig := map[string]map[state.Status]int{}
			for _, entry := range entries {
				counts[entry.Status]++
				if perConfig[entry.Migration.ConfigurationName] == nil {
					perConfig[entry.Migration.ConfigurationName] = map[state.Status]int{}
				}
				perConfig[entry.Migration.ConfigurationName][entry.Status]++
			}

			pterm.DefaultHeader.WithFullWidth().Println("waypoint status")

			panels := pterm.Panels{
				{{Data: statCard("Pending", counts[state.Pending], pterm.FgYellow)}},
				{{Data: statCard("Applied", counts[state.Applied], pterm.FgGreen)}},
				{{Data: statCard("Orphaned", counts[state.Orphaned], pterm.FgRed)}},
			}
			if err := pterm.DefaultPanel.WithPanels(panels).Render(); err != nil {
				return err
			}

			table := pterm.TableData{{"Configuration", "Pending", "Applied", "Orphaned"}}
			for name, cs := range perConfig {
				table = append(table, []string{
					name,
					fmt.Sprint(cs[state.Pending]),
					fmt.Sprint(cs[state.Applied]),
					fmt.Sprint(cs[state.Orphaned]),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
}

func statCard(label string, count int, color pterm.Color) string {
	return pterm.NewStyle(color, pterm.Bold).Sprintf("%s: %d", label, count)
}
