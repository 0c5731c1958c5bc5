// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/scheduler"
	"github.com/s0up4200/xseed/internal/torrentcache"
)

func TestCleanupExecutor_RemovesOrphanedEntriesOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cache := torrentcache.New(t.TempDir(), zerolog.Nop())

	referencedHash := "6666666666666666666666666666666666666666"
	orphanHash := "7777777777777777777777777777777777777777"
	require.NoError(t, cache.Write(referencedHash, []byte("referenced")))
	require.NoError(t, cache.Write(orphanHash, []byte("orphan")))

	se, err := models.NewSearcheeStore(db).GetOrCreate(ctx, "Release.Name-GRP")
	require.NoError(t, err)
	decisions := models.NewDecisionStore(db)
	_, err = decisions.Upsert(ctx, db, models.DecisionRow{
		SearcheeID: se.ID,
		GUID:       "guid-1",
		InfoHash:   referencedHash,
		Decision:   domain.DecisionMatch,
	})
	require.NoError(t, err)

	exec := scheduler.CleanupExecutor(cache, decisions, zerolog.Nop())
	require.NoError(t, exec(ctx, nil))

	assert.True(t, cache.Has(referencedHash))
	assert.False(t, cache.Has(orphanHash))
}

func TestCleanupExecutor_EmptyCacheSkipsLookup(t *testing.T) {
	db := openTestDB(t)
	cache := torrentcache.New(t.TempDir(), zerolog.Nop())
	decisions := models.NewDecisionStore(db)

	exec := scheduler.CleanupExecutor(cache, decisions, zerolog.Nop())
	require.NoError(t, exec(context.Background(), nil))
}
