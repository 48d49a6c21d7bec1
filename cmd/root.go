// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/waypointdb/waypoint/cmd/flags"
	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/engine"
	"github.com/waypointdb/waypoint/pkg/state"
)

// Version is the CLI's own version string, overridden at build time via
// -ldflags.
var Version = "development"

func init() {
	viper.SetEnvPrefix("WAYPOINT")
	viper.AutomaticEnv()

	flags.Bind(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "waypoint",
	Short:        "A polyglot schema and data migration runner",
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the CLI, returning the first error any subcommand raised.
// main maps that error to an exit code via exitcode.
func Execute() error {
	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(showMigrationsCmd())
	rootCmd.AddCommand(reservedWordsCmd())
	rootCmd.AddCommand(generateMigrationCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(uiCmd())

	return rootCmd.Execute()
}

// newEngine loads the configuration file, opens the state store, and
// returns a ready-to-use Engine together with the closer the caller must
// run once done with it.
func newEngine(ctx context.Context) (*engine.Engine, func() error, error) {
	path := flags.ConfigFile()
	if _, statErr := os.Stat(path); statErr != nil && os.IsNotExist(statErr) {
		return nil, nil, NoConfigError{Path: path}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, ConfigError{Cause: err}
	}

	store, conn, err := engine.OpenStateStore(ctx, cfg)
	if err != nil {
		return nil, nil, StateStoreOpenError{Cause: err}
	}
	store.WithLogger(state.NewLogger())

	e := engine.New(cfg, store, flags.Environment()).WithLogger(engine.NewLogger())
	closer := func() error {
		closeErr := e.Close()
		if err := conn.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		return closeErr
	}
	return e, closer, nil
}
