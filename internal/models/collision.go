// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"

	"github.com/s0up4200/xseed/internal/dbinterface"
)

var ErrCollisionNotFound = errors.New("collision not found")

// CollisionRow is 1:1 with a decision row, keyed by decision_id.
type CollisionRow struct {
	DecisionID        int64
	CandidateTrackers []string
	KnownTrackers     []string
}

type CollisionStore struct {
	db dbinterface.Querier
}

func NewCollisionStore(db dbinterface.Querier) *CollisionStore {
	return &CollisionStore{db: db}
}

func (s *CollisionStore) Upsert(ctx context.Context, q dbinterface.Querier, row CollisionRow) error {
	candidateJSON, err := encodeTrackerJSON(row.CandidateTrackers)
	if err != nil {
		return err
	}
	knownJSON, err := encodeTrackerJSON(row.KnownTrackers)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO collisions (decision_id, candidate_trackers, known_trackers, first_seen, last_seen, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(decision_id) DO UPDATE SET
			candidate_trackers = excluded.candidate_trackers,
			known_trackers = excluded.known_trackers,
			last_seen = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
	`, row.DecisionID, candidateJSON, knownJSON)
	return err
}

func (s *CollisionStore) Get(ctx context.Context, decisionID int64) (*CollisionRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT decision_id, candidate_trackers, known_trackers
		FROM collisions WHERE decision_id = ?
	`, decisionID)

	var out CollisionRow
	var candidateJSON, knownJSON string
	if err := row.Scan(&out.DecisionID, &candidateJSON, &knownJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollisionNotFound
		}
		return nil, err
	}
	out.CandidateTrackers = decodeTrackerJSON(candidateJSON)
	out.KnownTrackers = decodeTrackerJSON(knownJSON)
	return &out, nil
}

func (s *CollisionStore) Delete(ctx context.Context, q dbinterface.Querier, decisionID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM collisions WHERE decision_id = ?`, decisionID)
	return err
}

// EquivalentRow identifies a collision row considered a duplicate of another: same
// info hash (via its decision row), same searchee name, same tracker
// payloads, but owned by a different decision_id — the re-announced-under-a-
// new-guid case the recorder must fold together instead of duplicating.
type EquivalentRow struct {
	DecisionID int64
}

// FindEquivalent looks for a collision row with the same info hash, searchee
// name, and tracker payloads, owned by a decision_id other than excludeID.
func (s *CollisionStore) FindEquivalent(ctx context.Context, infoHash, searcheeName, candidateJSON, knownJSON string, excludeID int64) (*EquivalentRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.decision_id
		FROM collisions c
		JOIN decision d ON d.id = c.decision_id
		JOIN searchee se ON se.id = d.searchee_id
		WHERE d.info_hash = ? AND se.name = ? AND c.candidate_trackers = ? AND c.known_trackers = ? AND c.decision_id != ?
		LIMIT 1
	`, infoHash, searcheeName, candidateJSON, knownJSON, excludeID)

	var out EquivalentRow
	if err := row.Scan(&out.DecisionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// StaleCollision is one row returned by StaleCollisions, which joins
// collisions -> decision -> searchee, left-joined against client_searchee by
// info hash, and returns rows whose decision is the cross-tracker collision
// kind but no client currently holds the hash — the collision-recheck job's
// candidate set.
type StaleCollision struct {
	DecisionID   int64
	SearcheeName string
	InfoHash     string
}

// FilteredCollision is a collision row joined with its searchee name, for
// the collisionFilters listing.
type FilteredCollision struct {
	DecisionID        int64
	SearcheeName      string
	InfoHash          string
	CandidateTrackers []string
	KnownTrackers     []string
}

// ListByTracker returns collisions whose candidate or known tracker set
// contains tracker; an empty tracker returns every collision.
func (s *CollisionStore) ListByTracker(ctx context.Context, tracker string) ([]FilteredCollision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.decision_id, se.name, d.info_hash, c.candidate_trackers, c.known_trackers
		FROM collisions c
		JOIN decision d ON d.id = c.decision_id
		JOIN searchee se ON se.id = d.searchee_id
		ORDER BY c.last_seen DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FilteredCollision
	for rows.Next() {
		var fc FilteredCollision
		var infoHash sql.NullString
		var candidateJSON, knownJSON string
		if err := rows.Scan(&fc.DecisionID, &fc.SearcheeName, &infoHash, &candidateJSON, &knownJSON); err != nil {
			return nil, err
		}
		fc.InfoHash = infoHash.String
		fc.CandidateTrackers = decodeTrackerJSON(candidateJSON)
		fc.KnownTrackers = decodeTrackerJSON(knownJSON)
		if tracker != "" && !containsTracker(fc.CandidateTrackers, tracker) && !containsTracker(fc.KnownTrackers, tracker) {
			continue
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

func containsTracker(trackers []string, target string) bool {
	for _, t := range trackers {
		if t == target {
			return true
		}
	}
	return false
}

func (s *CollisionStore) StaleCollisions(ctx context.Context, crossTrackerDecision string) ([]StaleCollision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.decision_id, se.name, d.info_hash
		FROM collisions c
		JOIN decision d ON d.id = c.decision_id
		JOIN searchee se ON se.id = d.searchee_id
		LEFT JOIN client_searchee cs ON cs.info_hash = d.info_hash
		WHERE d.decision = ? AND cs.info_hash IS NULL
	`, crossTrackerDecision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StaleCollision
	for rows.Next() {
		var sc StaleCollision
		var infoHash sql.NullString
		if err := rows.Scan(&sc.DecisionID, &sc.SearcheeName, &infoHash); err != nil {
			return nil, err
		}
		sc.InfoHash = infoHash.String
		out = append(out, sc)
	}
	return out, rows.Err()
}
