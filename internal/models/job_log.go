// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/s0up4200/xseed/internal/dbinterface"
)

var ErrJobLogNotFound = errors.New("job log not found")

type JobLogStore struct {
	db dbinterface.Querier
}

func NewJobLogStore(db dbinterface.Querier) *JobLogStore {
	return &JobLogStore{db: db}
}

// Touch records name as having just run, refreshing last_run to now.
func (s *JobLogStore) Touch(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_log (name, last_run)
		VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET last_run = CURRENT_TIMESTAMP
	`, name)
	return err
}

// SetLastRun pins name's last_run to an explicit instant, used by
// delayNextRun to push a job's next eligible tick out by one cadence
// without waiting for a real run to record it.
func (s *JobLogStore) SetLastRun(ctx context.Context, name string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_log (name, last_run)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET last_run = excluded.last_run
	`, name, at.UTC().Format("2006-01-02 15:04:05"))
	return err
}

// LastRun returns the unix-millis timestamp of name's last run, or
// ErrJobLogNotFound if the job has never run.
func (s *JobLogStore) LastRun(ctx context.Context, name string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT CAST(strftime('%s', last_run) AS INTEGER) * 1000
		FROM job_log WHERE name = ?
	`, name)
	var lastRun int64
	if err := row.Scan(&lastRun); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrJobLogNotFound
		}
		return 0, err
	}
	return lastRun, nil
}
