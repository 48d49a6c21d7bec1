// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"os"

	"github.com/waypointdb/waypoint/cmd"
	"github.com/waypointdb/waypoint/internal/exitcode"

	_ "github.com/waypointdb/waypoint/pkg/runner/curl"
	_ "github.com/waypointdb/waypoint/pkg/runner/interpreter"
	_ "github.com/waypointdb/waypoint/pkg/runner/kafka"
	_ "github.com/waypointdb/waypoint/pkg/runner/mariadb"
	_ "github.com/waypointdb/waypoint/pkg/runner/postgres"
	_ "github.com/waypointdb/waypoint/pkg/runner/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cmd.Execute()
	if err == nil {
		return exitcode.OK
	}

	var configErr cmd.ConfigError
	var noConfigErr cmd.NoConfigError
	var migDirErr cmd.MigrationsDirError
	var stateErr cmd.StateStoreOpenError
	var appErr cmd.ApplicationError

	switch {
	case errors.As(err, &noConfigErr):
		return exitcode.NoConfigSpecified
	case errors.As(err, &configErr):
		return exitcode.ConfigProblem
	case errors.As(err, &migDirErr):
		return exitcode.MigrationsDirProblem
	case errors.As(err, &stateErr):
		return exitcode.StateStoreProblem
	case errors.As(err, &appErr):
		return exitcode.MigrationApplicationError
	default:
		return exitcode.ConfigProblem
	}
}
