// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/internal/domain"
)

// ErrEmptyRule mirrors the structured "empty rule" validation error the UI
// pre-check expects: any non-allIndexers rule with zero trackers is invalid.
var ErrEmptyRule = errors.New("conflict rule has no trackers")

// ErrMisplacedAllIndexers is returned when a non-first rule sets AllIndexers;
// the operator's UI forces a single-entry rule set once the first rule is
// allIndexers, and saveRules enforces the same invariant server-side.
var ErrMisplacedAllIndexers = errors.New("allIndexers rule must be first and alone")

type ConflictRuleStore struct {
	db dbinterface.Querier
}

func NewConflictRuleStore(db dbinterface.Querier) *ConflictRuleStore {
	return &ConflictRuleStore{db: db}
}

// List returns the active rule set ordered by priority ascending.
func (s *ConflictRuleStore) List(ctx context.Context) ([]domain.ConflictRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, priority, all_indexers, trackers
		FROM conflict_rules ORDER BY priority ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConflictRule
	for rows.Next() {
		var r domain.ConflictRule
		var trackersJSON string
		if err := rows.Scan(&r.ID, &r.Priority, &r.AllIndexers, &trackersJSON); err != nil {
			return nil, err
		}
		r.Trackers = decodeTrackerJSON(trackersJSON)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRules atomically replaces the entire rule set. It validates the two
// invariants named in the data model before touching the database: every
// non-allIndexers rule must name at least one tracker, and an allIndexers
// rule may only appear first (and, if so, must be the only rule) — the
// trailing allIndexers band is auto-appended separately and is not part of
// the caller-supplied set.
func SaveConflictRules(ctx context.Context, beginner dbinterface.TxBeginner, rules []domain.ConflictRule) error {
	for i, r := range rules {
		if !r.AllIndexers && len(r.Trackers) == 0 {
			return ErrEmptyRule
		}
		if r.AllIndexers && i != 0 {
			return ErrMisplacedAllIndexers
		}
		if r.AllIndexers && len(rules) > 1 {
			return ErrMisplacedAllIndexers
		}
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conflict_rules`); err != nil {
		return fmt.Errorf("clear conflict rules: %w", err)
	}

	for i, r := range rules {
		trackersJSON, err := encodeTrackerJSON(r.Trackers)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conflict_rules (priority, all_indexers, trackers, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		`, i+1, r.AllIndexers, trackersJSON)
		if err != nil {
			return fmt.Errorf("insert conflict rule: %w", err)
		}
	}

	return tx.Commit()
}

// EffectiveRules returns the stored rules with the implicit trailing
// allIndexers band appended, unless the first rule already is allIndexers
// (in which case it is already the sole rule, per SaveConflictRules).
func EffectiveRules(stored []domain.ConflictRule) []domain.ConflictRule {
	if len(stored) == 0 {
		return nil
	}
	if stored[0].AllIndexers {
		return stored
	}
	for _, r := range stored {
		if r.AllIndexers {
			return stored
		}
	}
	out := make([]domain.ConflictRule, len(stored), len(stored)+1)
	copy(out, stored)
	out = append(out, domain.ConflictRule{
		Priority:    len(stored) + 1,
		AllIndexers: true,
	})
	return out
}
