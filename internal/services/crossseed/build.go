// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package crossseed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/collision"
	"github.com/s0up4200/xseed/internal/services/conflictrules"
	"github.com/s0up4200/xseed/internal/services/decision"
	"github.com/s0up4200/xseed/internal/torrentcache"
)

// BuildOptions bundles the concrete stores and collaborators needed to
// assemble a production Orchestrator. Clients is the torrent-client driver
// set the conflict resolver evicts against; an empty map is valid (no
// driver configured) since eviction is only attempted when rules actually
// prefer the candidate's tracker.
type BuildOptions struct {
	DB             *database.DB
	Decisions      *models.DecisionStore
	Searchees      *models.SearcheeStore
	Collisions     *models.CollisionStore
	Clients        *models.ClientSearcheeStore
	Rules          *models.ConflictRuleStore
	Indexers       *models.IndexerStore
	Cache          *torrentcache.Cache
	Snatcher       decision.Snatcher
	TorrentClients map[string]conflictrules.TorrentClient
	BlockList      []string
	Logger         zerolog.Logger
}

// Build constructs the conflict resolver, decision engine, and collision
// recorder from opts and returns the Orchestrator wrapping them.
func Build(opts BuildOptions) *Orchestrator {
	resolver := conflictrules.New(
		effectiveRulesFunc(opts.Rules),
		opts.Indexers.TrackerSet,
		clientSearcheeLister{store: opts.Clients},
		opts.TorrentClients,
		opts.Logger,
	)

	engine := decision.NewEngine(opts.Snatcher, opts.Cache, resolver, opts.Indexers, opts.Logger)
	engine.BlockList = opts.BlockList

	recorder := collision.New(opts.Collisions, opts.Logger)

	return New(opts.DB, engine, recorder, opts.Decisions, opts.Searchees, opts.Collisions, opts.Clients, opts.Logger)
}

// effectiveRulesFunc adapts ConflictRuleStore.List to conflictrules.Resolver's
// Rules field, appending the implicit trailing allIndexers band the stored
// rule set doesn't carry.
func effectiveRulesFunc(rules *models.ConflictRuleStore) func(ctx context.Context) ([]domain.ConflictRule, error) {
	return func(ctx context.Context) ([]domain.ConflictRule, error) {
		stored, err := rules.List(ctx)
		if err != nil {
			return nil, err
		}
		return models.EffectiveRules(stored), nil
	}
}
