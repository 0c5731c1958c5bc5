// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/dbinterface"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
)

// BulkSearcher re-runs a search for the named searchees, bypassing the
// recent-search debounce so the recheck's re-triggered searches actually
// execute immediately.
type BulkSearcher interface {
	BulkSearch(ctx context.Context, searcheeNames []string, excludeRecentSearch bool) error
}

// CollisionRecheckExecutor builds the Executor for the COLLISION_RECHECK
// job: find collisions no client still holds, delete them, and re-search
// the affected releases.
func CollisionRecheckExecutor(db dbinterface.Querier, collisions *models.CollisionStore, searcher BulkSearcher, logger zerolog.Logger) Executor {
	return func(ctx context.Context, _ map[string]any) error {
		stale, err := collisions.StaleCollisions(ctx, string(domain.DecisionInfoHashAlreadyExistsAnotherTracker))
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		names := make([]string, 0, len(stale))
		seen := make(map[string]struct{}, len(stale))
		for _, sc := range stale {
			if err := collisions.Delete(ctx, db, sc.DecisionID); err != nil {
				return err
			}
			if _, ok := seen[sc.SearcheeName]; ok {
				continue
			}
			seen[sc.SearcheeName] = struct{}{}
			names = append(names, sc.SearcheeName)
		}

		logger.Info().Int("staleCollisions", len(stale)).Int("searchees", len(names)).Msg("collision recheck found no client holding these hashes, re-searching")
		return searcher.BulkSearch(ctx, names, true)
	}
}
