// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package crossseed wires the decision engine, conflict resolver, and
// collision recorder together into the caching wrapper known as
// assessCandidateCaching: persistence and transaction boundaries around an
// otherwise pure assessment pipeline.
package crossseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/collision"
	"github.com/s0up4200/xseed/internal/services/decision"
)

// Orchestrator implements assessCandidateCaching: look up the prior
// decision for (searchee, guid), short-circuit to a collision-only recheck
// when its info hash is still held by a client, and otherwise run the full
// engine pipeline and persist decision+collision writes in one transaction.
type Orchestrator struct {
	DB         *database.DB
	Engine     *decision.Engine
	Recorder   *collision.Recorder
	Decisions  *models.DecisionStore
	Searchees  *models.SearcheeStore
	Collisions *models.CollisionStore
	Clients    *models.ClientSearcheeStore
	Logger     zerolog.Logger
}

// New assembles an Orchestrator from its collaborators directly; most
// callers want Build, which also constructs the engine, resolver, and
// recorder from raw stores.
func New(db *database.DB, engine *decision.Engine, recorder *collision.Recorder, decisions *models.DecisionStore, searchees *models.SearcheeStore, collisions *models.CollisionStore, clients *models.ClientSearcheeStore, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		DB:         db,
		Engine:     engine,
		Recorder:   recorder,
		Decisions:  decisions,
		Searchees:  searchees,
		Collisions: collisions,
		Clients:    clients,
		Logger:     logger.With().Str("component", "crossseed").Logger(),
	}
}

// AssessCandidate resolves searchee.Title to its decision-store row, loads
// the excludedInfoHashes set, and either re-runs conflict resolution against
// an existing still-excluded decision or runs the full engine pipeline and
// persists the result.
func (o *Orchestrator) AssessCandidate(ctx context.Context, candidate domain.Candidate, searchee domain.Searchee, knownTrackers []string, overrides decision.Overrides) (domain.ResultAssessment, error) {
	se, err := o.Searchees.GetOrCreate(ctx, searchee.Title)
	if err != nil {
		return domain.ResultAssessment{}, fmt.Errorf("resolve searchee: %w", err)
	}

	excluded, err := o.Clients.AllInfoHashes(ctx)
	if err != nil {
		return domain.ResultAssessment{}, fmt.Errorf("load excluded info hashes: %w", err)
	}

	existing, err := o.Decisions.Get(ctx, se.ID, candidate.GUID)
	if err != nil && !errors.Is(err, models.ErrDecisionNotFound) {
		return domain.ResultAssessment{}, fmt.Errorf("load existing decision: %w", err)
	}

	if existing != nil && existing.InfoHash != "" {
		if _, stillHeld := excluded[strings.ToLower(existing.InfoHash)]; stillHeld {
			return o.recheckCollisionOnly(ctx, existing, candidate, searchee.Title)
		}
	}

	result := o.Engine.AssessCandidate(ctx, candidate, searchee, excluded, knownTrackers, overrides)
	if !result.MetaCached {
		return result, nil
	}

	err = o.DB.WithTx(ctx, func(tx *sql.Tx) error {
		decisionID, err := o.Decisions.Upsert(ctx, tx, models.DecisionRow{
			SearcheeID:      se.ID,
			GUID:            candidate.GUID,
			InfoHash:        result.Metafile.InfoHash,
			Decision:        result.Decision,
			FuzzySizeFactor: overrides.FuzzySizeFactor,
		})
		if err != nil {
			return err
		}
		return o.Recorder.Apply(ctx, tx, collision.Input{
			DecisionID:        decisionID,
			Decision:          result.Decision,
			InfoHash:          result.Metafile.InfoHash,
			SearcheeName:      searchee.Title,
			CandidatePrivate:  result.Metafile.Private == domain.PrivateTrue,
			CandidateTrackers: result.Metafile.Trackers,
			KnownTrackers:     knownTrackers,
		})
	})
	if err != nil {
		return domain.ResultAssessment{}, fmt.Errorf("persist assessment: %w", err)
	}

	return result, nil
}

// recheckCollisionOnly is the short-circuit path: the stored decision is
// preserved, last_seen is touched, and conflict resolution re-runs against
// the new candidate's tracker without a fresh snatch. A previously-recorded
// collision row is refreshed or cleared depending on the outcome; a decision
// with no collision row to begin with is left alone beyond the touch.
func (o *Orchestrator) recheckCollisionOnly(ctx context.Context, existing *models.DecisionRow, candidate domain.Candidate, searcheeName string) (domain.ResultAssessment, error) {
	candidateTrackers := []string{candidate.Tracker}

	evicted, err := o.Engine.Conflicts.Resolve(ctx, existing.InfoHash, candidateTrackers, searcheeName)
	if err != nil {
		o.Logger.Warn().Err(err).Str("infoHash", existing.InfoHash).Msg("recheck conflict resolution failed")
	}

	result := domain.ResultAssessment{Decision: existing.Decision, MetaCached: true}

	priorCollision, collisionErr := o.Collisions.Get(ctx, existing.ID)
	if collisionErr != nil && !errors.Is(collisionErr, models.ErrCollisionNotFound) {
		return domain.ResultAssessment{}, fmt.Errorf("load existing collision: %w", collisionErr)
	}

	err = o.DB.WithTx(ctx, func(tx *sql.Tx) error {
		if err := o.Decisions.TouchLastSeen(ctx, tx, existing.ID); err != nil {
			return err
		}
		if evicted {
			return o.Collisions.Delete(ctx, tx, existing.ID)
		}
		if priorCollision == nil {
			// No collision row was ever recorded for this decision (e.g. a
			// public candidate); nothing to refresh.
			return nil
		}
		return o.Collisions.Upsert(ctx, tx, models.CollisionRow{
			DecisionID:        existing.ID,
			CandidateTrackers: candidateTrackers,
			KnownTrackers:     priorCollision.KnownTrackers,
		})
	})
	if err != nil {
		return domain.ResultAssessment{}, fmt.Errorf("persist recheck: %w", err)
	}

	return result, nil
}
