// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/pkg/hashutil"
)

var ErrDecisionNotFound = errors.New("decision not found")

// DecisionRow is the persisted (searchee_id, guid) -> decision mapping.
type DecisionRow struct {
	ID              int64
	SearcheeID      int64
	GUID            string
	InfoHash        string
	Decision        domain.Decision
	FirstSeen       int64 // unix millis
	LastSeen        int64
	FuzzySizeFactor float64
}

type DecisionStore struct {
	db dbinterface.Querier
}

func NewDecisionStore(db dbinterface.Querier) *DecisionStore {
	return &DecisionStore{db: db}
}

func (s *DecisionStore) Get(ctx context.Context, searcheeID int64, guid string) (*DecisionRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, searchee_id, guid, info_hash, decision,
		       CAST(strftime('%s', first_seen) AS INTEGER) * 1000,
		       CAST(strftime('%s', last_seen) AS INTEGER) * 1000,
		       fuzzy_size_factor
		FROM decision WHERE searchee_id = ? AND guid = ?
	`, searcheeID, guid)
	return scanDecisionRow(row)
}

// Upsert writes (or refreshes) a decision row and returns the stored row's
// ID, needed by the caller to key a collision row 1:1.
func (s *DecisionStore) Upsert(ctx context.Context, q dbinterface.Querier, row DecisionRow) (int64, error) {
	infoHash := sql.NullString{}
	if row.InfoHash != "" {
		infoHash = sql.NullString{String: hashutil.Normalize(row.InfoHash), Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO decision (searchee_id, guid, info_hash, decision, first_seen, last_seen, fuzzy_size_factor)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, ?)
		ON CONFLICT(searchee_id, guid) DO UPDATE SET
			info_hash = excluded.info_hash,
			decision = excluded.decision,
			last_seen = CURRENT_TIMESTAMP,
			fuzzy_size_factor = excluded.fuzzy_size_factor
	`, row.SearcheeID, row.GUID, infoHash, string(row.Decision), row.FuzzySizeFactor)
	if err != nil {
		return 0, err
	}

	existing, err := s.Get(ctx, row.SearcheeID, row.GUID)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// TouchLastSeen refreshes last_seen without altering the stored decision,
// used by the caching wrapper's collision-only short-circuit path.
func (s *DecisionStore) TouchLastSeen(ctx context.Context, q dbinterface.Querier, id int64) error {
	_, err := q.ExecContext(ctx, `UPDATE decision SET last_seen = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (s *DecisionStore) GetByID(ctx context.Context, id int64) (*DecisionRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, searchee_id, guid, info_hash, decision,
		       CAST(strftime('%s', first_seen) AS INTEGER) * 1000,
		       CAST(strftime('%s', last_seen) AS INTEGER) * 1000,
		       fuzzy_size_factor
		FROM decision WHERE id = ?
	`, id)
	return scanDecisionRow(row)
}

// GUIDInfoHash is one (guid, info_hash) pair, used to rebuild the in-memory
// correlation map at startup.
type GUIDInfoHash struct {
	GUID     string
	InfoHash string
}

// AllGUIDInfoHash returns every decision row carrying a known info hash,
// for rebuilding the in-memory guid->infoHash map.
func (s *DecisionStore) AllGUIDInfoHash(ctx context.Context) ([]GUIDInfoHash, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guid, info_hash FROM decision WHERE info_hash IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GUIDInfoHash
	for rows.Next() {
		var pair GUIDInfoHash
		if err := rows.Scan(&pair.GUID, &pair.InfoHash); err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}

// CachedInfoHashes returns every distinct info hash any decision row
// currently references, the cleanup job's "still referenced" set: a cached
// metafile whose hash isn't in this set is an orphan.
func (s *DecisionStore) CachedInfoHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT info_hash FROM decision WHERE info_hash IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var infoHash string
		if err := rows.Scan(&infoHash); err != nil {
			return nil, err
		}
		out[infoHash] = struct{}{}
	}
	return out, rows.Err()
}

// CandidateRow is a decision row joined against its searchee's name, the
// shape the candidates RPC listing hands back to callers.
type CandidateRow struct {
	DecisionRow
	SearcheeName string
}

// ListCandidates returns decision rows newest-first, joined with their
// searchee name, for the paginated candidates listing.
func (s *DecisionStore) ListCandidates(ctx context.Context, limit, offset int) ([]CandidateRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.searchee_id, se.name, d.guid, d.info_hash, d.decision,
		       CAST(strftime('%s', d.first_seen) AS INTEGER) * 1000,
		       CAST(strftime('%s', d.last_seen) AS INTEGER) * 1000,
		       d.fuzzy_size_factor
		FROM decision d
		JOIN searchee se ON se.id = d.searchee_id
		ORDER BY d.last_seen DESC, d.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CandidateRow
	for rows.Next() {
		var c CandidateRow
		var infoHash sql.NullString
		var decision string
		if err := rows.Scan(&c.ID, &c.SearcheeID, &c.SearcheeName, &c.GUID, &infoHash, &decision, &c.FirstSeen, &c.LastSeen, &c.FuzzySizeFactor); err != nil {
			return nil, err
		}
		if infoHash.Valid {
			c.InfoHash = infoHash.String
		}
		c.Decision = domain.Decision(decision)
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanDecisionRow(row *sql.Row) (*DecisionRow, error) {
	var out DecisionRow
	var infoHash sql.NullString
	var decision string
	if err := row.Scan(&out.ID, &out.SearcheeID, &out.GUID, &infoHash, &decision, &out.FirstSeen, &out.LastSeen, &out.FuzzySizeFactor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDecisionNotFound
		}
		return nil, err
	}
	if infoHash.Valid {
		out.InfoHash = infoHash.String
	}
	out.Decision = domain.Decision(decision)
	return &out, nil
}
