// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/pkg/hashutil"
)

// BlocklistEntry is an operator-excluded info-hash, independent of the
// decision engine's substring block-list check.
type BlocklistEntry struct {
	InfoHash  string    `json:"infoHash"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlocklistStore struct {
	db dbinterface.Querier
}

func NewBlocklistStore(db dbinterface.Querier) *BlocklistStore {
	return &BlocklistStore{db: db}
}

func (s *BlocklistStore) List(ctx context.Context) ([]*BlocklistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT info_hash, reason, created_at
		FROM cross_seed_blocklist
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*BlocklistEntry
	for rows.Next() {
		var entry BlocklistEntry
		if err := rows.Scan(&entry.InfoHash, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *BlocklistStore) Get(ctx context.Context, infoHash string) (*BlocklistEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT info_hash, reason, created_at
		FROM cross_seed_blocklist
		WHERE info_hash = ?
	`, hashutil.Normalize(infoHash))

	var entry BlocklistEntry
	if err := row.Scan(&entry.InfoHash, &entry.Reason, &entry.CreatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *BlocklistStore) Upsert(ctx context.Context, entry *BlocklistEntry) (*BlocklistEntry, error) {
	if entry == nil {
		return nil, errors.New("entry is nil")
	}
	normalized := hashutil.Normalize(entry.InfoHash)
	if normalized == "" {
		return nil, errors.New("infoHash is required")
	}
	reason := strings.TrimSpace(entry.Reason)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cross_seed_blocklist (info_hash, reason, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(info_hash) DO UPDATE SET reason = excluded.reason
	`, normalized, reason)
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, normalized)
}

func (s *BlocklistStore) Delete(ctx context.Context, infoHash string) error {
	normalized := hashutil.Normalize(infoHash)
	if normalized == "" {
		return errors.New("infoHash is required")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM cross_seed_blocklist WHERE info_hash = ?`, normalized)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindBlocked returns the first blocked info-hash among hashes, if any.
func (s *BlocklistStore) FindBlocked(ctx context.Context, hashes []string) (string, bool, error) {
	normalized := hashutil.NormalizeAll(hashes)
	if len(normalized) == 0 {
		return "", false, nil
	}

	query := fmt.Sprintf(`
		SELECT info_hash FROM cross_seed_blocklist
		WHERE info_hash IN (%s)
		LIMIT 1
	`, buildPlaceholders(len(normalized)))

	args := make([]any, len(normalized))
	for i, h := range normalized {
		args[i] = h
	}

	var infoHash string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&infoHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return infoHash, true, nil
}

func buildPlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('?')
	}
	return sb.String()
}
