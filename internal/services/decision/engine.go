// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package decision implements candidate assessment: classifying the
// relationship between an indexer candidate (or an already-parsed metafile)
// and a local searchee into the fixed decision taxonomy.
package decision

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/domain"
)

// Overrides carries the per-searchee tolerances the contract's pre-filter
// and matching steps consult. Zero values are never valid inputs; callers
// populate these from configuration (fuzzySizeFactor, minSizeRatio) or
// per-label defaults (includeSingleEpisodes, strictMatching).
type Overrides struct {
	FuzzySizeFactor       float64
	MinSizeRatio          float64
	StrictMatching        bool
	IncludeSingleEpisodes bool
}

// ConflictResolver is the collaborator the engine consults when a
// fresh candidate's info hash collides with one already excluded locally.
// A true result means the incumbent was evicted and the hash is clear to
// retry as a fresh candidate.
type ConflictResolver interface {
	Resolve(ctx context.Context, infoHash string, candidateTrackers []string, searcheeName string) (bool, error)
}

// TrackerMerger persists a successful snatch's tracker list into the
// originating indexer's tracker set (append-only union).
type TrackerMerger interface {
	MergeTrackers(ctx context.Context, indexerID int, trackers []string) error
}

// Cache is the subset of the torrent-cache this engine needs: writing a
// freshly-snatched metafile's raw bytes under its info hash.
type Cache interface {
	Write(infoHash string, raw []byte) error
}

// Engine assesses candidates against searchees. It holds no persistence of
// its own beyond the collaborators passed in; callers own transaction
// boundaries (see crossseed.Orchestrator, the decision-store-backed caching
// wrapper built on top of this package).
type Engine struct {
	Snatcher   Snatcher
	Cache      Cache
	Conflicts  ConflictResolver
	Trackers   TrackerMerger
	Releases   *ReleaseCache
	BlockList  []string
	Logger     zerolog.Logger
}

func NewEngine(snatcher Snatcher, cache Cache, conflicts ConflictResolver, trackers TrackerMerger, logger zerolog.Logger) *Engine {
	return &Engine{
		Snatcher:  snatcher,
		Cache:     cache,
		Conflicts: conflicts,
		Trackers:  trackers,
		Releases:  NewReleaseCache(),
		Logger:    logger.With().Str("component", "decision").Logger(),
	}
}

// AssessMetafile runs the identity-check and content-matching stages over an
// already-parsed metafile, skipping pre-filters and snatching entirely — the
// "caller vouches it is usable" form the contract names.
func (e *Engine) AssessMetafile(ctx context.Context, metafile domain.Metafile, searchee domain.Searchee, excludedInfoHashes map[string]struct{}, knownTrackers []string, overrides Overrides) domain.ResultAssessment {
	metafileName := searchee.Title
	if len(metafile.Files) > 0 {
		metafileName = metafile.Files[0].Name
	}
	if isBlocked(metafileName, e.BlockList) {
		return domain.ResultAssessment{Decision: domain.DecisionBlockedRelease, Metafile: &metafile}
	}

	identity := classifyIdentity(metafile, searchee, excludedInfoHashes, knownTrackers)
	if identity.Excluded {
		if identity.Decision != domain.DecisionInfoHashAlreadyExistsAnotherTracker || e.Conflicts == nil {
			return domain.ResultAssessment{Decision: identity.Decision, Metafile: &metafile, TrackerMismatch: identity.TrackerMismatch}
		}

		evicted, err := e.Conflicts.Resolve(ctx, metafile.InfoHash, metafile.Trackers, searchee.Title)
		if err != nil {
			e.Logger.Warn().Err(err).Str("infoHash", metafile.InfoHash).Msg("conflict resolution failed")
		}
		if !evicted {
			return domain.ResultAssessment{Decision: identity.Decision, Metafile: &metafile, TrackerMismatch: identity.TrackerMismatch}
		}
		delete(excludedInfoHashes, strings.ToLower(metafile.InfoHash))
	}

	match := CompareFileTrees(searchee, metafile, overrides.MinSizeRatio, overrides.StrictMatching)

	if seasonPackGuard(searchee.Title, e.Releases.Parse(metafileName), overrides.IncludeSingleEpisodes) {
		return domain.ResultAssessment{Decision: domain.DecisionFileTreeMismatch, Metafile: &metafile}
	}

	return domain.ResultAssessment{Decision: match.Decision, Metafile: &metafile}
}

// AssessCandidate runs the full pipeline: pre-filters, snatch, then delegates
// to AssessMetafile for identity/content classification.
func (e *Engine) AssessCandidate(ctx context.Context, candidate domain.Candidate, searchee domain.Searchee, excludedInfoHashes map[string]struct{}, knownTrackers []string, overrides Overrides) domain.ResultAssessment {
	if isBlocked(searchee.Title, e.BlockList) || isBlocked(candidate.Name, e.BlockList) {
		return domain.ResultAssessment{Decision: domain.DecisionBlockedRelease}
	}

	source := e.Releases.Parse(searchee.Title)
	parsedCandidate := e.Releases.Parse(candidate.Name)
	if d := runPreFilters(source, parsedCandidate); d != "" {
		return domain.ResultAssessment{Decision: d}
	}

	if candidate.HasSize() && fuzzySizeMismatch(candidate.Size, searchee.Length, overrides.FuzzySizeFactor) {
		return domain.ResultAssessment{Decision: domain.DecisionFuzzySizeMismatch}
	}

	if candidate.Link == "" {
		return domain.ResultAssessment{Decision: domain.DecisionNoDownloadLink}
	}

	metafile, raw, snatchDecision, err := snatchWithRetry(ctx, e.Snatcher, candidate, searchee.Label)
	if err != nil {
		e.Logger.Debug().Err(err).Str("guid", candidate.GUID).Msg("snatch failed")
		return domain.ResultAssessment{Decision: snatchDecision}
	}

	if err := e.Cache.Write(metafile.InfoHash, raw); err != nil {
		e.Logger.Warn().Err(err).Str("infoHash", metafile.InfoHash).Msg("failed to write torrent cache entry")
	}
	if e.Trackers != nil && candidate.IndexerID != 0 {
		if err := e.Trackers.MergeTrackers(ctx, candidate.IndexerID, metafile.Trackers); err != nil {
			e.Logger.Warn().Err(err).Int("indexerId", candidate.IndexerID).Msg("failed to merge tracker set")
		}
	}

	result := e.AssessMetafile(ctx, metafile, searchee, excludedInfoHashes, knownTrackers, overrides)
	result.MetaCached = true
	return result
}
