// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/s0up4200/xseed/internal/dbinterface"
)

var ErrSearcheeNotFound = errors.New("searchee not found")

// SearcheeRow is the persisted identity of a searchee: just its name, since
// the decision table keys off (searchee_id, guid) and everything else about
// a searchee is supplied fresh by the caller on each assessment.
type SearcheeRow struct {
	ID   int64
	Name string
}

type SearcheeStore struct {
	db dbinterface.Querier
}

func NewSearcheeStore(db dbinterface.Querier) *SearcheeStore {
	return &SearcheeStore{db: db}
}

// GetOrCreate returns the row for name, creating it if absent. Names are
// unique; concurrent creators race on the unique constraint and the loser
// simply re-selects.
func (s *SearcheeStore) GetOrCreate(ctx context.Context, name string) (*SearcheeRow, error) {
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}

	if row, err := s.GetByName(ctx, name); err == nil {
		return row, nil
	} else if !errors.Is(err, ErrSearcheeNotFound) {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO searchee (name) VALUES (?)`, name)
	if err != nil && !isUniqueConstraintError(err) {
		return nil, fmt.Errorf("create searchee: %w", err)
	}
	return s.GetByName(ctx, name)
}

func (s *SearcheeStore) GetByName(ctx context.Context, name string) (*SearcheeRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM searchee WHERE name = ?`, name)
	var out SearcheeRow
	if err := row.Scan(&out.ID, &out.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSearcheeNotFound
		}
		return nil, err
	}
	return &out, nil
}
