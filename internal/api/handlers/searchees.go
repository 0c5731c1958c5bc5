// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/s0up4200/xseed/internal/models"
)

const (
	minCandidatesLimit = 1
	maxCandidatesLimit = 200
	maxBulkSearchNames = 20
)

var (
	errMissingNames = errors.New("names must not be empty")
	errTooManyNames = errors.New("names exceeds the 20 name limit")
)

// BulkSearcher performs an on-demand re-search for a set of searchee names,
// reporting how many it attempted, how many were requested, and how many
// turned up a new candidate. The real implementation talks to a Torznab
// indexer client, a fixed external collaborator outside this package.
type BulkSearcher interface {
	BulkSearchByNames(ctx context.Context, names []string, configOverride map[string]any) (attempted, requested, totalFound int, err error)
}

// SearcheesHandler adapts the candidates/bulk-search/collision-filter
// listings to HTTP.
type SearcheesHandler struct {
	Decisions  *models.DecisionStore
	Collisions *models.CollisionStore
	Searcher   BulkSearcher
}

type candidateDTO struct {
	SearcheeName string `json:"searcheeName"`
	GUID         string `json:"guid"`
	InfoHash     string `json:"infoHash,omitempty"`
	Decision     string `json:"decision"`
	FirstSeen    int64  `json:"firstSeen"`
	LastSeen     int64  `json:"lastSeen"`
}

// Candidates returns a page of decision rows, newest-first. limit must be
// in [1,200] (default 50); offset must be >= 0 (default 0).
func (h *SearcheesHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minCandidatesLimit || n > maxCandidatesLimit {
			writeError(w, http.StatusBadRequest, errors.New("limit must be an integer in [1,200]"))
			return
		}
		limit = n
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("offset must be a non-negative integer"))
			return
		}
		offset = n
	}

	rows, err := h.Decisions.ListCandidates(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]candidateDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, candidateDTO{
			SearcheeName: row.SearcheeName,
			GUID:         row.GUID,
			InfoHash:     row.InfoHash,
			Decision:     string(row.Decision),
			FirstSeen:    row.FirstSeen,
			LastSeen:     row.LastSeen,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type bulkSearchRequest struct {
	Names          []string       `json:"names"`
	ConfigOverride map[string]any `json:"configOverride,omitempty"`
}

type bulkSearchResponse struct {
	Attempted  int `json:"attempted"`
	Requested  int `json:"requested"`
	TotalFound int `json:"totalFound"`
}

// BulkSearch re-searches an operator-supplied list of searchee names. names
// must be non-empty and capped at 20 entries.
func (h *SearcheesHandler) BulkSearch(w http.ResponseWriter, r *http.Request) {
	var body bulkSearchRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body.Names) == 0 {
		writeError(w, http.StatusBadRequest, errMissingNames)
		return
	}
	if len(body.Names) > maxBulkSearchNames {
		writeError(w, http.StatusBadRequest, errTooManyNames)
		return
	}

	attempted, requested, totalFound, err := h.Searcher.BulkSearchByNames(r.Context(), body.Names, body.ConfigOverride)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkSearchResponse{Attempted: attempted, Requested: requested, TotalFound: totalFound})
}

type collisionDTO struct {
	SearcheeName      string   `json:"searcheeName"`
	InfoHash          string   `json:"infoHash"`
	CandidateTrackers []string `json:"candidateTrackers"`
	KnownTrackers     []string `json:"knownTrackers"`
}

// CollisionFilters lists recorded collisions, optionally narrowed to those
// touching a single tracker host via the ?tracker= query parameter.
func (h *SearcheesHandler) CollisionFilters(w http.ResponseWriter, r *http.Request) {
	tracker := r.URL.Query().Get("tracker")
	rows, err := h.Collisions.ListByTracker(r.Context(), tracker)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]collisionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, collisionDTO{
			SearcheeName:      row.SearcheeName,
			InfoHash:          row.InfoHash,
			CandidateTrackers: row.CandidateTrackers,
			KnownTrackers:     row.KnownTrackers,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
