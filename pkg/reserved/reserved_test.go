// SPDX-License-Identifier: Apache-2.0

package reserved_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waypointdb/waypoint/pkg/reserved"
)

func TestRunnerByNameIsCaseInsensitive(t *testing.T) {
	r, ok := reserved.RunnerByName("mariadb")
	assert.True(t, ok)
	assert.Equal(t, reserved.MariaDB, r.Name)

	r, ok = reserved.RunnerByName("CURL")
	assert.True(t, ok)
	assert.Equal(t, reserved.Curl, r.Name)

	_, ok = reserved.RunnerByName("oracle")
	assert.False(t, ok)
}

func TestFlagByNameIsCaseSensitive(t *testing.T) {
	_, ok := reserved.FlagByName("data")
	assert.True(t, ok)

	_, ok = reserved.FlagByName("Data")
	assert.False(t, ok)
}

func TestMinimumVocabularyPresent(t *testing.T) {
	names := map[string]bool{}
	for _, r := range reserved.Runners() {
		names[r.Name] = true
	}
	for _, want := range []string{
		reserved.MariaDB, reserved.PostgreSQL, reserved.Curl,
		reserved.Bash3, reserved.Bash4, reserved.Python3,
		reserved.Redis, reserved.Kafka, reserved.Rails,
	} {
		assert.True(t, names[want], "missing reserved runner %q", want)
	}
}

func TestRunnerAcceptsExtension(t *testing.T) {
	r, _ := reserved.RunnerByName(reserved.Bash3)
	assert.True(t, r.AcceptsExtension("sh"))
	assert.True(t, r.AcceptsExtension("bash3"))
	assert.False(t, r.AcceptsExtension("bash4"))
}
