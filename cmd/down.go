// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/engine"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/migrations/source"
)

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Unapply every applied migration, most recent first",
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

			pterm.Info.Println("run " + e.RunID.String())

			sp, _ := pterm.DefaultSpinner.Start("Unapplying migrations...")
			results := e.Down(ctx, entries)
			sp.Stop()

			failures, unapplied := 0, 0
			for _, r := range results {
				if r.Failed() {
					failures++
					pterm.Error.Println(r.String())
					continue
				}
				if r.Tag == engine.Success {
					unapplied++
				}
				pterm.Success.Println(r.String())
			}

			if failures > 0 {
				return ApplicationError{Count: failures}
			}
			pterm.Success.Println(fmt.Sprintf("%d migration(s) unapplied", unapplied))
			return nil
		},
	}
}
