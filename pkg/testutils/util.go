// SPDX-License-Identifier: Apache-2.0

// Package testutils spins up a disposable PostgreSQL container for
// integration tests that need a real relational state store rather than a
// sqlmock fake.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultPostgresVersion = "15.3"

var containerConnStr string

// SharedTestMain starts one postgres container for every test in a
// package, torn down once the package's tests finish.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:"+pgVersion),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		os.Exit(1)
	}

	containerConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = ctr.Terminate(ctx)
	os.Exit(code)
}

// WithDatabase creates a fresh database in the shared container, yields a
// connection to it, and leaves cleanup to t.Cleanup.
func WithDatabase(t *testing.T, fn func(db *sql.DB, connStr string)) {
	t.Helper()
	ctx := context.Background()

	root, err := sql.Open("postgres", containerConnStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = root.Close() })

	dbName := randomDBName()
	if _, err := root.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName))); err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(containerConnStr)
	if err != nil {
		t.Fatal(err)
	}
	u.Path = "/" + dbName
	connStr := u.String()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	fn(db, connStr)
}

func randomDBName() string {
	return fmt.Sprintf("waypoint_test_%d", time.Now().UnixNano())
}
