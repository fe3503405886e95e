// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/hypercounter/state"

	_ "modernc.org/sqlite"
)

var _ state.Database = (*Database)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS counter_state (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
)`

// Database stores counter state in a single SQLite table.
type Database struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at [dsn]. ":memory:" gives a
// process-local database.
func New(dsn string) (*Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps ":memory:"
	// databases from being split across connections.
	db.SetMaxOpenConns(1)

	// Writers from other handles on the same file wait instead of failing
	// with SQLITE_BUSY.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &Database{db: db}, nil
}

func (d *Database) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM counter_state WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (d *Database) Insert(ctx context.Context, key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO counter_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (d *Database) Remove(ctx context.Context, key []byte) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM counter_state WHERE key = ?`, key)
	return err
}

func (d *Database) CompareAndSwap(ctx context.Context, key []byte, old []byte, value []byte) (bool, error) {
	if value == nil {
		value = []byte{}
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var res sql.Result
	if old == nil {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO counter_state (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, value,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE counter_state SET value = ? WHERE key = ? AND value = ?`,
			value, key, old,
		)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	return true, tx.Commit()
}

func (d *Database) Close() error {
	return d.db.Close()
}
