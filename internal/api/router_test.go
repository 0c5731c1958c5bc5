// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/api"
	"github.com/s0up4200/xseed/internal/api/handlers"
	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/models"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return api.NewRouter(api.Dependencies{
		ConflictRules: &handlers.ConflictRulesHandler{DB: db, Rules: models.NewConflictRuleStore(db)},
		Searchees:     &handlers.SearcheesHandler{Decisions: models.NewDecisionStore(db), Collisions: models.NewCollisionStore(db)},
		Logger:        zerolog.Nop(),
	})
}

func TestRouter_CORSPreflightAllowsCrossOrigin(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/conflictRules/getRules", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_GetRulesReachesHandler(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/conflictRules/getRules", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
