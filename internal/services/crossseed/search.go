// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package crossseed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/services/decision"
)

// IndexerClient is the fixed external Torznab collaborator: given a
// searchee name, return the indexer's search hits as candidates. xseed
// does not implement it; the embedding deployment supplies one.
type IndexerClient interface {
	Search(ctx context.Context, name string, configOverride map[string]any) ([]domain.Candidate, error)
}

// Searcher implements both scheduler.BulkSearcher and the API's
// handlers.BulkSearcher by running every candidate an IndexerClient returns
// through the Orchestrator, so a real search driver and this engine's core
// assessment logic connect through a single, testable type.
type Searcher struct {
	Orchestrator *Orchestrator
	Indexer      IndexerClient
	Overrides    func() decision.Overrides
	Logger       zerolog.Logger
}

// BulkSearch implements scheduler.BulkSearcher. excludeRecentSearch is
// accepted for interface compatibility; the debounce it controls belongs to
// the indexer client's own request cadence, not to this type.
func (s *Searcher) BulkSearch(ctx context.Context, names []string, excludeRecentSearch bool) error {
	_, _, _, err := s.BulkSearchByNames(ctx, names, nil)
	return err
}

// BulkSearchByNames implements handlers.BulkSearcher.
func (s *Searcher) BulkSearchByNames(ctx context.Context, names []string, configOverride map[string]any) (attempted, requested, totalFound int, err error) {
	requested = len(names)
	if s.Indexer == nil {
		s.Logger.Warn().Int("searchees", len(names)).Msg("bulk search requested but no indexer client is configured")
		return 0, requested, 0, nil
	}

	overrides := decision.Overrides{}
	if s.Overrides != nil {
		overrides = s.Overrides()
	}

	for _, name := range names {
		candidates, searchErr := s.Indexer.Search(ctx, name, configOverride)
		if searchErr != nil {
			s.Logger.Warn().Err(searchErr).Str("searchee", name).Msg("indexer search failed")
			continue
		}
		attempted++

		searchee := domain.Searchee{Title: name, Label: domain.LabelSearch}
		for _, candidate := range candidates {
			result, assessErr := s.Orchestrator.AssessCandidate(ctx, candidate, searchee, nil, overrides)
			if assessErr != nil {
				s.Logger.Warn().Err(assessErr).Str("searchee", name).Str("guid", candidate.GUID).Msg("candidate assessment failed")
				continue
			}
			if isMatchDecision(result.Decision) {
				totalFound++
			}
		}
	}

	return attempted, requested, totalFound, nil
}

func isMatchDecision(d domain.Decision) bool {
	switch d {
	case domain.DecisionMatch, domain.DecisionMatchSizeOnly, domain.DecisionMatchPartial:
		return true
	default:
		return false
	}
}
