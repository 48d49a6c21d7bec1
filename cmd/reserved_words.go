// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/waypointdb/waypoint/pkg/reserved"
)

func reservedWordsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reserved-words",
		Short: "Inspect the reserved runner and flag vocabulary",
	}
	root.AddCommand(reservedWordsLsCmd())
	return root
}

func reservedWordsLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List every reserved runner and flag name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := pterm.TableData{{"Kind", "Name", "Meaning", "Extensions"}}
			for _, w := range reserved.All() {
				switch w.Kind {
				case reserved.KindRunner:
					table = append(table, []string{"runner", w.Runner.Name, w.Runner.Description, joinExts(w.Runner.Extensions)})
				case reserved.KindFlag:
					table = append(table, []string{"flag", w.Flag.Name, w.Flag.Meaning, ""})
				}
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
}

func joinExts(exts []string) string {
	out := ""
	for i, e := range exts {
		if i > 0 {
			out += ", "
		}
		out += e
	}
	return out
}
