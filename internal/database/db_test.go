// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errRollbackForTest = errors.New("rollback for test")

func TestOpenAppliesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "xseed.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'decision'")
	var count int
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "xseed.db"))
	require.NoError(t, err)
	defer db.Close()

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO searchee (name) VALUES (?)", "alpha")
		return err
	})
	require.NoError(t, err)

	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM searchee WHERE name = ?", "alpha")
	var count int
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO searchee (name) VALUES (?)", "beta"); err != nil {
			return err
		}
		return errRollbackForTest
	})
	require.ErrorIs(t, err, errRollbackForTest)

	row = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM searchee WHERE name = ?", "beta")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 0, count)
}
