// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/s0up4200/xseed/internal/dbinterface"
)

var ErrIndexerNotFound = errors.New("indexer not found")

// Indexer is a configured Torznab indexer, along with the accumulated set of
// tracker hosts observed on torrents snatched through it.
type Indexer struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	BaseURL         string    `json:"baseUrl"`
	APIKeyEncrypted string    `json:"-"`
	Trackers        []string  `json:"trackers"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IndexerStore persists indexer configuration and their derived tracker sets.
// API keys are encrypted at rest with AES-GCM, the way the teacher's indexer
// credential store does for the same reason: the database file is a more
// likely leak vector than the process's memory.
type IndexerStore struct {
	db            dbinterface.Querier
	encryptionKey []byte
}

func NewIndexerStore(db dbinterface.Querier, encryptionKey []byte) (*IndexerStore, error) {
	if len(encryptionKey) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	return &IndexerStore{db: db, encryptionKey: encryptionKey}, nil
}

func (s *IndexerStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *IndexerStore) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("malformed ciphertext")
	}
	nonce, rest := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, rest, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *IndexerStore) Create(ctx context.Context, name, baseURL, apiKey string) (*Indexer, error) {
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if baseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}

	encryptedAPIKey, err := s.encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt API key: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer (name, base_url, api_key_encrypted, trackers)
		VALUES (?, ?, ?, '[]')
	`, name, baseURL, encryptedAPIKey)
	if err != nil {
		return nil, fmt.Errorf("create indexer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

func (s *IndexerStore) Get(ctx context.Context, id int) (*Indexer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, base_url, api_key_encrypted, trackers, created_at, updated_at
		FROM indexer WHERE id = ?
	`, id)
	return scanIndexer(row)
}

func (s *IndexerStore) List(ctx context.Context) ([]*Indexer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_url, api_key_encrypted, trackers, created_at, updated_at
		FROM indexer ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list indexers: %w", err)
	}
	defer rows.Close()

	var indexers []*Indexer
	for rows.Next() {
		indexer, err := scanIndexerRows(rows)
		if err != nil {
			return nil, err
		}
		indexers = append(indexers, indexer)
	}
	return indexers, rows.Err()
}

// TrackerSet returns the union of all trackers across all configured
// indexers, used by the conflict resolver to recognize "allIndexers" hosts.
func (s *IndexerStore) TrackerSet(ctx context.Context) (map[string]struct{}, error) {
	indexers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, idx := range indexers {
		for _, t := range idx.Trackers {
			set[t] = struct{}{}
		}
	}
	return set, nil
}

// MergeTrackers appends trackers into an indexer's persisted set, an
// append-only union: trackers are never removed once observed.
func (s *IndexerStore) MergeTrackers(ctx context.Context, id int, trackers []string) error {
	if len(trackers) == 0 {
		return nil
	}
	indexer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	merged, err := unionTrackerJSON(mustEncodeTrackers(indexer.Trackers), trackers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE indexer SET trackers = ? WHERE id = ?`, merged, id)
	return err
}

func (s *IndexerStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM indexer WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete indexer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrIndexerNotFound
	}
	return nil
}

// GetDecryptedAPIKey returns the decrypted API key for an indexer.
func (s *IndexerStore) GetDecryptedAPIKey(indexer *Indexer) (string, error) {
	return s.decrypt(indexer.APIKeyEncrypted)
}

func mustEncodeTrackers(trackers []string) string {
	encoded, err := encodeTrackerJSON(trackers)
	if err != nil {
		return "[]"
	}
	return encoded
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIndexer(row rowScanner) (*Indexer, error) {
	var indexer Indexer
	var trackersJSON string
	if err := row.Scan(
		&indexer.ID, &indexer.Name, &indexer.BaseURL, &indexer.APIKeyEncrypted,
		&trackersJSON, &indexer.CreatedAt, &indexer.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIndexerNotFound
		}
		return nil, fmt.Errorf("scan indexer: %w", err)
	}
	indexer.Trackers = decodeTrackerJSON(trackersJSON)
	return &indexer, nil
}

func scanIndexerRows(rows *sql.Rows) (*Indexer, error) {
	return scanIndexer(rows)
}
