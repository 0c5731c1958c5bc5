// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
)

// ConflictRulesHandler adapts the conflict-rule priority list to HTTP.
type ConflictRulesHandler struct {
	DB         dbinterface.TxBeginner
	Rules      *models.ConflictRuleStore
	Indexers   *models.IndexerStore
	Collisions *models.CollisionStore
}

type ruleDTO struct {
	AllIndexers bool     `json:"allIndexers"`
	Trackers    []string `json:"trackers"`
}

// GetRules returns the stored rule set in priority order. The implicit
// trailing allIndexers band is not included — it is not part of what the
// operator edits.
func (h *ConflictRulesHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Rules.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleDTO{AllIndexers: rule.AllIndexers, Trackers: rule.Trackers})
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveRules atomically replaces the rule set. A rule with no trackers (and
// that isn't the allIndexers rule) fails with the structured "empty rule"
// error the UI pre-check mirrors.
func (h *ConflictRulesHandler) SaveRules(w http.ResponseWriter, r *http.Request) {
	var body []ruleDTO
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rules := make([]domain.ConflictRule, len(body))
	for i, d := range body {
		rules[i] = domain.ConflictRule{AllIndexers: d.AllIndexers, Trackers: d.Trackers}
	}

	if err := models.SaveConflictRules(r.Context(), h.DB, rules); err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyRule), errors.Is(err, models.ErrMisplacedAllIndexers):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// GetTrackerOptions lists every tracker host known through a configured
// indexer, the candidate set a rule may name.
func (h *ConflictRulesHandler) GetTrackerOptions(w http.ResponseWriter, r *http.Request) {
	set, err := h.Indexers.TrackerSet(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetThirdPartyTrackers lists tracker hosts observed on collisions that do
// not belong to any configured indexer — trackers the operator is seeing
// incidentally rather than searching through.
func (h *ConflictRulesHandler) GetThirdPartyTrackers(w http.ResponseWriter, r *http.Request) {
	configured, err := h.Indexers.TrackerSet(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	collisions, err := h.Collisions.ListByTracker(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	seen := make(map[string]struct{})
	var out []string
	for _, c := range collisions {
		for _, t := range append(append([]string{}, c.CandidateTrackers...), c.KnownTrackers...) {
			if _, isConfigured := configured[t]; isConfigured {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
