// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
)

func mustTrackerJSON(t *testing.T, values []string) string {
	t.Helper()
	data, err := json.Marshal(values)
	require.NoError(t, err)
	return string(data)
}

func TestCollisionStore_UpsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	searchees := models.NewSearcheeStore(db)
	se, err := searchees.GetOrCreate(ctx, "Collision.Release-GRP")
	require.NoError(t, err)

	decisions := models.NewDecisionStore(db)
	decisionID, err := decisions.Upsert(ctx, db, models.DecisionRow{
		SearcheeID: se.ID,
		GUID:       "guid-collision",
		InfoHash:   "1111111111111111111111111111111111111111",
		Decision:   domain.DecisionInfoHashAlreadyExistsAnotherTracker,
	})
	require.NoError(t, err)

	collisions := models.NewCollisionStore(db)
	require.NoError(t, collisions.Upsert(ctx, db, models.CollisionRow{
		DecisionID:        decisionID,
		CandidateTrackers: []string{"tracker.b", "tracker.a"},
		KnownTrackers:     []string{"tracker.a"},
	}))

	got, err := collisions.Get(ctx, decisionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tracker.a", "tracker.b"}, got.CandidateTrackers)
	assert.Equal(t, []string{"tracker.a"}, got.KnownTrackers)

	// Re-upsert refreshes in place rather than erroring.
	require.NoError(t, collisions.Upsert(ctx, db, models.CollisionRow{
		DecisionID:        decisionID,
		CandidateTrackers: []string{"tracker.c"},
		KnownTrackers:     []string{"tracker.a"},
	}))
	got2, err := collisions.Get(ctx, decisionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tracker.c"}, got2.CandidateTrackers)
}

func TestCollisionStore_GetMissingReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	collisions := models.NewCollisionStore(db)
	_, err := collisions.Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrCollisionNotFound)
}

func TestCollisionStore_FindEquivalentAcrossDecisions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	searchees := models.NewSearcheeStore(db)
	se, err := searchees.GetOrCreate(ctx, "Dup.Release-GRP")
	require.NoError(t, err)

	decisions := models.NewDecisionStore(db)
	firstID, err := decisions.Upsert(ctx, db, models.DecisionRow{
		SearcheeID: se.ID,
		GUID:       "guid-first",
		InfoHash:   "2222222222222222222222222222222222222222",
		Decision:   domain.DecisionInfoHashAlreadyExistsAnotherTracker,
	})
	require.NoError(t, err)

	collisions := models.NewCollisionStore(db)
	require.NoError(t, collisions.Upsert(ctx, db, models.CollisionRow{
		DecisionID:        firstID,
		CandidateTrackers: []string{"tracker.b"},
		KnownTrackers:     []string{"tracker.a"},
	}))

	// A second decision row re-announced under a new guid, same info hash,
	// same searchee name, and the same tracker payloads as the first.
	secondID, err := decisions.Upsert(ctx, db, models.DecisionRow{
		SearcheeID: se.ID,
		GUID:       "guid-second",
		InfoHash:   "2222222222222222222222222222222222222222",
		Decision:   domain.DecisionInfoHashAlreadyExistsAnotherTracker,
	})
	require.NoError(t, err)

	first, err := collisions.Get(ctx, firstID)
	require.NoError(t, err)
	candidateJSON := mustTrackerJSON(t, first.CandidateTrackers)
	knownJSON := mustTrackerJSON(t, first.KnownTrackers)

	equiv, err := collisions.FindEquivalent(ctx, "2222222222222222222222222222222222222222", "Dup.Release-GRP", candidateJSON, knownJSON, secondID)
	require.NoError(t, err)
	require.NotNil(t, equiv)
	assert.Equal(t, firstID, equiv.DecisionID)
}

func TestCollisionStore_StaleCollisions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	searchees := models.NewSearcheeStore(db)
	se, err := searchees.GetOrCreate(ctx, "Stale.Release-GRP")
	require.NoError(t, err)

	decisions := models.NewDecisionStore(db)
	decisionID, err := decisions.Upsert(ctx, db, models.DecisionRow{
		SearcheeID: se.ID,
		GUID:       "guid-stale",
		InfoHash:   "3333333333333333333333333333333333333333",
		Decision:   domain.DecisionInfoHashAlreadyExistsAnotherTracker,
	})
	require.NoError(t, err)

	collisions := models.NewCollisionStore(db)
	require.NoError(t, collisions.Upsert(ctx, db, models.CollisionRow{
		DecisionID:        decisionID,
		CandidateTrackers: []string{"tracker.b"},
		KnownTrackers:     []string{"tracker.a"},
	}))

	stale, err := collisions.StaleCollisions(ctx, string(domain.DecisionInfoHashAlreadyExistsAnotherTracker))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, decisionID, stale[0].DecisionID)
	assert.Equal(t, "Stale.Release-GRP", stale[0].SearcheeName)

	// Once a client holds the hash, it no longer counts as stale.
	clientSearchees := models.NewClientSearcheeStore(db)
	require.NoError(t, clientSearchees.Upsert(ctx, models.ClientSearcheeRow{
		InfoHash:   "3333333333333333333333333333333333333333",
		ClientHost: "client-1",
	}))

	stale2, err := collisions.StaleCollisions(ctx, string(domain.DecisionInfoHashAlreadyExistsAnotherTracker))
	require.NoError(t, err)
	assert.Empty(t, stale2)
}
