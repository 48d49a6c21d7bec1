// SPDX-License-Identifier: Apache-2.0

// Package runner defines the capability every migration backend
// implements, and the per-engine-invocation cache that keeps one runner
// instance alive across every step that targets the same configuration.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
)

// canonicalRunnerName resolves a configuration's "_runner" value (which
// may be spelled in any case) to the reserved vocabulary's canonical
// spelling, which is how Factory registrations are keyed.
func canonicalRunnerName(name string) string {
	if r, ok := reserved.RunnerByName(name); ok {
		return r.Name
	}
	return name
}

// Runner applies a single migration step's rendered source against a
// concrete backend.
type Runner interface {
	// Apply executes the rendered step source. ctx carries cancellation;
	// direction is passed through for runners that might need to behave
	// differently tearing down than building up. None of the runners in
	// this repository uses it: each step's source already says what to do
	// (e.g. Kafka's "create"/"delete" lines).
	Apply(ctx context.Context, direction migrations.Direction, renderedSource string) error

	// Close releases any connection the runner opened. Engines close
	// every runner in their cache once a run completes.
	Close() error
}

// Factory constructs a Runner from a configuration entry. One Factory is
// registered per reserved runner name.
type Factory func(name string, cfg config.RunnerConfiguration) (Runner, error)

var factories = map[string]Factory{}

// Register adds a Factory under a reserved runner name. Concrete runner
// packages call this from an init func so that importing them for side
// effect is enough to make them available.
func Register(reservedName string, f Factory) {
	factories[reservedName] = f
}

// Cache owns one Runner per configuration name for the lifetime of a
// single engine invocation. It is never shared across invocations: runners
// hold live connections, and a fresh run should not inherit a prior run's
// broken or stale one.
type Cache struct {
	mu      sync.Mutex
	runners map[string]Runner
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache {
	return &Cache{runners: map[string]Runner{}}
}

// Get returns the Runner for configurationName, constructing and caching
// one via the registered Factory for cfg.RunnerName() if this is the first
// request for that configuration this invocation.
func (c *Cache) Get(configurationName string, cfg config.RunnerConfiguration) (Runner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.runners[configurationName]; ok {
		return r, nil
	}

	factory, ok := factories[canonicalRunnerName(cfg.RunnerName())]
	if !ok {
		return nil, migrations.ConfigurationError{
			Name:   configurationName,
			Reason: fmt.Sprintf("no runner registered for %q", cfg.RunnerName()),
		}
	}

	r, err := factory(configurationName, cfg)
	if err != nil {
		return nil, migrations.RunnerError{Runner: cfg.RunnerName(), Reason: "constructing runner", Cause: err}
	}

	c.runners[configurationName] = r
	return r, nil
}

// CloseAll closes every runner constructed by this cache, collecting (but
// not stopping on) individual close errors.
func (c *Cache) CloseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for name, r := range c.runners {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing runner for %q: %w", name, err)
		}
	}
	return firstErr
}
