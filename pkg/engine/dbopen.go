// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/waypointdb/waypoint/internal/connstr"
	"github.com/waypointdb/waypoint/pkg/config"
)

// postgresDSN builds a URL-form Postgres connection string so the
// configured schema can be carried as a search_path option; connstr is the
// only part of the DSN that needs URL manipulation rather than plain
// key=value formatting.
func postgresDSN(rc config.RunnerConfiguration) (string, error) {
	base := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(rc.Username), url.QueryEscape(rc.Password), rc.IPOrHostname, rc.Port, rc.Database)
	return connstr.AppendSearchPathOption(base, rc.SchemaOrDefault())
}

func mysqlDSN(rc config.RunnerConfiguration) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?multiStatements=true",
		rc.Username, rc.Password, rc.IPOrHostname, rc.Port, rc.Database)
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// wrapDB adapts a bare *sql.DB to the db.DB interface without retry
// behavior, for the state store's own connection (the ledger table's own
// queries are simple and idempotent enough not to need RDB's retry loop).
// The runners open their own plain *sql.DB connections and do not retry
// either.
type wrapDB struct {
	*sql.DB
}

func (w wrapDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	tx, err := w.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
