// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cloudflare/backoff"
	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers worth retrying on: lock wait timeout exceeded and
// deadlock found when trying to get lock.
const (
	errLockWaitTimeout uint16 = 1205
	errDeadlock        uint16 = 1213
)

// MDB wraps a *sql.DB opened with the MySQL driver and retries queries
// using the same exponential backoff RDB uses for Postgres, substituting
// MySQL's own transient-lock error numbers for Postgres' error code.
type MDB struct {
	DB *sql.DB
}

func (db *MDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		res, err := db.DB.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}

		if isRetryableMySQLError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return nil, err
			}
			continue
		}

		return nil, err
	}
}

func (db *MDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		rows, err := db.DB.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}

		if isRetryableMySQLError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return nil, err
			}
			continue
		}

		return nil, err
	}
}

func (db *MDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		tx, err := db.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		err = f(ctx, tx)
		if err == nil {
			return tx.Commit()
		}

		if errRollback := tx.Rollback(); errRollback != nil {
			return errRollback
		}

		if isRetryableMySQLError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return err
			}
			continue
		}

		return err
	}
}

func (db *MDB) Close() error {
	return db.DB.Close()
}

func isRetryableMySQLError(err error) bool {
	myErr := &mysql.MySQLError{}
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == errLockWaitTimeout || myErr.Number == errDeadlock
}
