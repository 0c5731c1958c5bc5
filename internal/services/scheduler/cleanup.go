// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/torrentcache"
)

// CleanupExecutor builds the Executor for the CLEANUP job: diff the on-disk
// cached-torrent set against every info hash a decision row still
// references, and remove the orphans, enforcing the "cached file exists iff
// referenced" invariant the other jobs assume but never sweep for.
func CleanupExecutor(cache *torrentcache.Cache, decisions *models.DecisionStore, logger zerolog.Logger) Executor {
	return func(ctx context.Context, _ map[string]any) error {
		entries, err := cache.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		referenced, err := decisions.CachedInfoHashes(ctx)
		if err != nil {
			return err
		}

		removed := 0
		for _, e := range entries {
			if _, ok := referenced[e.InfoHash]; ok {
				continue
			}
			if err := cache.Remove(e.InfoHash); err != nil {
				logger.Warn().Err(err).Str("infoHash", e.InfoHash).Msg("failed to remove orphaned cached torrent")
				continue
			}
			removed++
		}
		if removed > 0 {
			logger.Info().Int("removed", removed).Int("total", len(entries)).Msg("cleanup removed orphaned cached torrents")
		}
		return nil
	}
}
