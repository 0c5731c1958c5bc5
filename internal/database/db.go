// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package database wraps a pure-Go SQLite connection with the single-writer
// discipline SQLite requires: all writes are serialized through a mutex
// while reads use the pool's default concurrency.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const defaultBusyTimeoutMillis = 5000

// DB wraps *sql.DB and satisfies dbinterface.Querier/TxBeginner so stores can
// accept it, a *sql.Tx, or a bare *sql.DB interchangeably.
type DB struct {
	conn *sql.DB

	// writeMu serializes writes onto SQLite's single writer. Taking this
	// mutex around every write avoids SQLITE_BUSY storms under WAL mode.
	writeMu sync.Mutex
}

// Open creates the parent directory if needed, opens the database at path,
// applies pragmas, and ensures the embedded schema exists.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(8)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaultBusyTimeoutMillis),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}
	if _, err := conn.ExecContext(ctx, string(schema)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Info().Str("path", path).Msg("database opened")
	return &DB{conn: conn}, nil
}

// OpenMemory opens an in-memory database, for tests and short-lived checks.
func OpenMemory(ctx context.Context) (*DB, error) {
	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	conn.SetMaxOpenConns(1)

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}
	if _, err := conn.ExecContext(ctx, string(schema)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

// ExecContext serializes through writeMu: concurrent callers otherwise race
// for SQLite's single writer lock and surface as busy errors under load.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.conn.ExecContext(ctx, query, args...)
}

// BeginTx takes the write lock only while the transaction is being opened;
// the lock is released when BeginTx returns, so writes made through the
// returned transaction are not serialized against other writers. Callers
// must Commit or Rollback promptly; prefer WithTx, which holds the lock
// for the whole transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.conn.BeginTx(ctx, opts)
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. The write lock is held for fn's entire duration, satisfying
// the requirement that decision and collision writes share one transaction.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed after transaction error")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}
