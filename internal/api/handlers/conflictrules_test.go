// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/api/handlers"
	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newIndexerStore(t *testing.T, db *database.DB) *models.IndexerStore {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	store, err := models.NewIndexerStore(db, key)
	require.NoError(t, err)
	return store
}

func TestConflictRulesHandler_GetRulesEmpty(t *testing.T) {
	db := openTestDB(t)
	h := &handlers.ConflictRulesHandler{DB: db, Rules: models.NewConflictRuleStore(db)}

	req := httptest.NewRequest(http.MethodGet, "/api/conflictRules/getRules", nil)
	w := httptest.NewRecorder()
	h.GetRules(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Empty(t, body)
}

func TestConflictRulesHandler_SaveRulesRejectsEmptyRule(t *testing.T) {
	db := openTestDB(t)
	h := &handlers.ConflictRulesHandler{DB: db, Rules: models.NewConflictRuleStore(db)}

	payload, err := json.Marshal([]map[string]any{{"allIndexers": false, "trackers": []string{}}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/conflictRules/saveRules", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	h.SaveRules(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestConflictRulesHandler_SaveRulesThenGetRulesRoundTrips(t *testing.T) {
	db := openTestDB(t)
	h := &handlers.ConflictRulesHandler{DB: db, Rules: models.NewConflictRuleStore(db)}

	payload, err := json.Marshal([]map[string]any{
		{"allIndexers": false, "trackers": []string{"tracker.example"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/conflictRules/saveRules", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	h.SaveRules(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/conflictRules/getRules", nil)
	w = httptest.NewRecorder()
	h.GetRules(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "tracker.example", body[0]["trackers"].([]any)[0])
}

func TestConflictRulesHandler_GetTrackerOptionsReflectsIndexers(t *testing.T) {
	db := openTestDB(t)
	indexers := newIndexerStore(t, db)
	idx, err := indexers.Create(context.Background(), "indexer-1", "https://indexer.example", "key")
	require.NoError(t, err)
	require.NoError(t, indexers.MergeTrackers(context.Background(), idx.ID, []string{"tracker-a.example"}))

	h := &handlers.ConflictRulesHandler{DB: db, Rules: models.NewConflictRuleStore(db), Indexers: indexers}
	req := httptest.NewRequest(http.MethodGet, "/api/conflictRules/getTrackerOptions", nil)
	w := httptest.NewRecorder()
	h.GetTrackerOptions(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Contains(t, out, "tracker-a.example")
}
