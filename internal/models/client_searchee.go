// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/pkg/hashutil"
)

// ClientSearcheeRow is one (info_hash, client_host) row: a torrent client's
// own record that it holds infoHash, and under which trackers/private flag.
type ClientSearcheeRow struct {
	InfoHash   string
	ClientHost string
	Trackers   []string
	Private    bool
}

type ClientSearcheeStore struct {
	db dbinterface.Querier
}

func NewClientSearcheeStore(db dbinterface.Querier) *ClientSearcheeStore {
	return &ClientSearcheeStore{db: db}
}

// Upsert records that clientHost holds infoHash with the given trackers and
// private flag, replacing any prior row for the same pair.
func (s *ClientSearcheeStore) Upsert(ctx context.Context, row ClientSearcheeRow) error {
	trackersJSON, err := encodeTrackerJSON(row.Trackers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO client_searchee (info_hash, client_host, trackers, private)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(info_hash, client_host) DO UPDATE SET trackers = excluded.trackers, private = excluded.private
	`, hashutil.Normalize(row.InfoHash), row.ClientHost, trackersJSON, row.Private)
	return err
}

// ByInfoHash returns every client's row for infoHash, the "incumbent" set
// the conflict resolver and identity checks reason about.
func (s *ClientSearcheeStore) ByInfoHash(ctx context.Context, infoHash string) ([]ClientSearcheeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT info_hash, client_host, trackers, private
		FROM client_searchee WHERE info_hash = ?
	`, hashutil.Normalize(infoHash))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClientSearcheeRow
	for rows.Next() {
		var r ClientSearcheeRow
		var trackersJSON string
		if err := rows.Scan(&r.InfoHash, &r.ClientHost, &trackersJSON, &r.Private); err != nil {
			return nil, err
		}
		r.Trackers = decodeTrackerJSON(trackersJSON)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllInfoHashes returns every info hash any client currently holds, the
// excludedInfoHashes set assessCandidateCaching consults before running the
// engine.
func (s *ClientSearcheeStore) AllInfoHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT info_hash FROM client_searchee`)
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

// Exists reports whether any client currently holds infoHash, used by the
// collision-recheck job to find stale rows.
func (s *ClientSearcheeStore) Exists(ctx context.Context, infoHash string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM client_searchee WHERE info_hash = ? LIMIT 1`, hashutil.Normalize(infoHash))
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// DeleteByInfoHash removes every client row for infoHash, used after a
// confirmed eviction succeeds on every owning client.
func (s *ClientSearcheeStore) DeleteByInfoHash(ctx context.Context, infoHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_searchee WHERE info_hash = ?`, hashutil.Normalize(infoHash))
	return err
}
