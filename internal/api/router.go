// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api exposes the engine's RPC surface: conflict-rule management
// and the searchee candidates/bulk-search/collision-filter endpoints. Auth
// is out of this engine's scope (a no-op placeholder middleware stands in
// for it), matching the teacher's chi router shape otherwise.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/api/handlers"
)

// Dependencies bundles the services the RPC handlers call into.
type Dependencies struct {
	ConflictRules *handlers.ConflictRulesHandler
	Searchees     *handlers.SearcheesHandler
	Logger        zerolog.Logger
}

// NewRouter builds the chi router: panic recovery, request logging, CORS and
// the auth placeholder, then the /api routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.Logger))

	r.Use(cors.New(cors.Options{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}).Handler)

	r.Use(authPlaceholder)

	r.Route("/api", func(r chi.Router) {
		r.Route("/conflictRules", func(r chi.Router) {
			r.Get("/getRules", deps.ConflictRules.GetRules)
			r.Post("/saveRules", deps.ConflictRules.SaveRules)
			r.Get("/getTrackerOptions", deps.ConflictRules.GetTrackerOptions)
			r.Get("/getThirdPartyTrackers", deps.ConflictRules.GetThirdPartyTrackers)
		})
		r.Route("/searchees", func(r chi.Router) {
			r.Get("/candidates", deps.Searchees.Candidates)
			r.Post("/bulkSearch", deps.Searchees.BulkSearch)
			r.Get("/collisionFilters", deps.Searchees.CollisionFilters)
		})
	})

	return r
}

// authPlaceholder stands in for the session/API-key middleware spec.md
// treats as out of scope; it never rejects a request.
func authPlaceholder(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request handled")
		})
	}
}
