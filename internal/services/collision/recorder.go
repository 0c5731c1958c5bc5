// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package collision implements the collision recorder: upserting or deleting
// collision rows under the private-torrent recording policy, with the
// semantic-dedup-by-equivalent-row logic that folds a torrent re-announced
// under a new guid into its existing collision row instead of duplicating.
package collision

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
)

// Recorder wraps a CollisionStore with the dedup and deletion-trigger policy
// spec.md ยง4.3 names.
type Recorder struct {
	Collisions *models.CollisionStore
	Logger     zerolog.Logger
}

func New(collisions *models.CollisionStore, logger zerolog.Logger) *Recorder {
	return &Recorder{Collisions: collisions, Logger: logger.With().Str("component", "collision").Logger()}
}

// Input bundles the fields the recorder needs about the assessment that just
// ran, kept small and decoupled from domain.ResultAssessment so this package
// doesn't need to import the decision engine.
type Input struct {
	DecisionID        int64
	Decision          domain.Decision
	InfoHash          string
	SearcheeName      string
	CandidatePrivate  bool
	CandidateTrackers []string
	KnownTrackers     []string
}

// Apply records or clears the collision row for DecisionID, per the three
// deletion triggers: the decision isn't the cross-tracker collision variant,
// the candidate isn't private, or (handled by the COLLISION_RECHECK job,
// which deletes the rows StaleCollisions returns, not by Apply) no client
// still holds the hash.
func (r *Recorder) Apply(ctx context.Context, q dbinterface.Querier, in Input) error {
	if !in.Decision.IsCrossTrackerCollision() || !in.CandidatePrivate {
		if err := r.Collisions.Delete(ctx, q, in.DecisionID); err != nil {
			return err
		}
		return nil
	}

	candidateJSON, err := encodeTrackerJSON(in.CandidateTrackers)
	if err != nil {
		return err
	}
	knownJSON, err := encodeTrackerJSON(in.KnownTrackers)
	if err != nil {
		return err
	}

	equiv, err := r.Collisions.FindEquivalent(ctx, in.InfoHash, in.SearcheeName, string(candidateJSON), string(knownJSON), in.DecisionID)
	if err != nil {
		return err
	}
	if equiv != nil {
		// A semantically equivalent row already exists under a different
		// decision_id (the same release re-announced under a new guid):
		// refresh that row instead of creating a duplicate, and drop this
		// decision's own row.
		if err := r.Collisions.Upsert(ctx, q, models.CollisionRow{
			DecisionID:        equiv.DecisionID,
			CandidateTrackers: in.CandidateTrackers,
			KnownTrackers:     in.KnownTrackers,
		}); err != nil {
			return err
		}
		return r.Collisions.Delete(ctx, q, in.DecisionID)
	}

	return r.Collisions.Upsert(ctx, q, models.CollisionRow{
		DecisionID:        in.DecisionID,
		CandidateTrackers: in.CandidateTrackers,
		KnownTrackers:     in.KnownTrackers,
	})
}

// encodeTrackerJSON mirrors the sorted-unique-lowercase JSON encoding the
// models package applies to tracker columns before storage, so the
// equivalent-row lookup compares against the same canonical form.
func encodeTrackerJSON(values []string) (string, error) {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		t := strings.ToLower(strings.TrimSpace(v))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
