// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package conflictrules implements the conflict resolver: deciding, per the
// operator's priority rules, whether a colliding candidate's tracker should
// displace an incumbent torrent held by one or more local clients.
package conflictrules

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/xseed/internal/domain"
)

var errTorrentStillPresent = errors.New("conflictrules: torrent still present after removal")

// TorrentClient is the external collaborator that owns removal and presence
// checks against a single managed torrent client.
type TorrentClient interface {
	Host() string
	RemoveTorrent(ctx context.Context, infoHash string) error
	IsTorrentPresent(ctx context.Context, infoHash string) (bool, error)
}

// ClientSearcheeLister resolves which clients currently hold infoHash and
// under which trackers, so the resolver can compute the incumbent priority
// without depending on internal/models directly.
type ClientSearcheeLister interface {
	ByInfoHash(ctx context.Context, infoHash string) ([]ClientHolder, error)
	DeleteByInfoHash(ctx context.Context, infoHash string) error
}

// ClientHolder is one client's record of holding infoHash.
type ClientHolder struct {
	ClientHost string
	Trackers   []string
}

// Resolver implements decision.ConflictResolver.
type Resolver struct {
	Rules         func(ctx context.Context) ([]domain.ConflictRule, error)
	IndexerHosts  func(ctx context.Context) (map[string]struct{}, error)
	Holders       ClientSearcheeLister
	Clients       map[string]TorrentClient // keyed by client host
	Logger        zerolog.Logger
}

func New(rules func(ctx context.Context) ([]domain.ConflictRule, error), indexerHosts func(ctx context.Context) (map[string]struct{}, error), holders ClientSearcheeLister, clients map[string]TorrentClient, logger zerolog.Logger) *Resolver {
	return &Resolver{Rules: rules, IndexerHosts: indexerHosts, Holders: holders, Clients: clients, Logger: logger.With().Str("component", "conflictrules").Logger()}
}

// priority returns the index of the first rule matching host (0-based),
// promoted to len(rules) — strictly lower than any matching rule — when
// nothing matches, per the contract's "no rule matches" treatment.
func priority(rules []domain.ConflictRule, indexers map[string]struct{}, host string) int {
	host = strings.ToLower(strings.TrimSpace(host))
	for i, r := range rules {
		if r.Matches(host, indexers) {
			return i
		}
	}
	return len(rules)
}

// minPriority computes the minimum priority over a set of tracker hosts,
// treating an empty host list as "no rule matches" (len(rules)).
func minPriority(rules []domain.ConflictRule, indexers map[string]struct{}, hosts []string) int {
	if len(hosts) == 0 {
		return len(rules)
	}
	best := len(rules) + 1
	for _, h := range hosts {
		if p := priority(rules, indexers, h); p < best {
			best = p
		}
	}
	return best
}

// Resolve implements the contract's resolveConflictRules algorithm.
// candidateTrackers empty means no conflict resolution is attempted (the
// contract's boundary behavior): the caller keeps the incumbent.
func (r *Resolver) Resolve(ctx context.Context, infoHash string, candidateTrackers []string, searcheeName string) (bool, error) {
	if len(candidateTrackers) == 0 {
		return false, nil
	}

	rules, err := r.Rules(ctx)
	if err != nil {
		return false, err
	}
	indexers, err := r.IndexerHosts(ctx)
	if err != nil {
		return false, err
	}

	holders, err := r.Holders.ByInfoHash(ctx, infoHash)
	if err != nil {
		return false, err
	}
	if len(holders) == 0 {
		return false, nil
	}

	incumbentHosts := make([]string, 0, len(holders))
	for _, h := range holders {
		incumbentHosts = append(incumbentHosts, h.Trackers...)
	}

	candidatePriority := minPriority(rules, indexers, candidateTrackers)
	incumbentPriority := minPriority(rules, indexers, incumbentHosts)

	if candidatePriority >= incumbentPriority {
		return false, nil
	}

	if err := r.evictAll(ctx, infoHash, holders); err != nil {
		r.Logger.Warn().Err(err).Str("infoHash", infoHash).Str("searchee", searcheeName).Msg("eviction failed, leaving incumbent in place")
		return false, nil
	}

	if err := r.Holders.DeleteByInfoHash(ctx, infoHash); err != nil {
		return false, err
	}
	return true, nil
}

// evictAll removes infoHash from every owning client and verifies removal.
// A holder whose client host has no configured TorrentClient fails the whole
// eviction before any removal is issued. Removals then run concurrently; the
// first failure cancels the shared context and is returned, and removals
// that already succeeded are not restored. On any error the caller treats
// the conflict as unresolved and keeps the client_searchee rows.
func (r *Resolver) evictAll(ctx context.Context, infoHash string, holders []ClientHolder) error {
	for _, holder := range holders {
		if _, ok := r.Clients[holder.ClientHost]; !ok {
			return errors.New("conflictrules: no torrent client configured for " + holder.ClientHost)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, holder := range holders {
		client := r.Clients[holder.ClientHost]
		eg.Go(func() error {
			if err := client.RemoveTorrent(egCtx, infoHash); err != nil {
				return err
			}
			present, err := client.IsTorrentPresent(egCtx, infoHash)
			if err != nil {
				return err
			}
			if present {
				return errTorrentStillPresent
			}
			return nil
		})
	}
	return eg.Wait()
}
