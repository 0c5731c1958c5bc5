// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package conflictrules_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/services/conflictrules"
)

type fakeHolders struct {
	holders []conflictrules.ClientHolder
	deleted bool
}

func (f *fakeHolders) ByInfoHash(ctx context.Context, infoHash string) ([]conflictrules.ClientHolder, error) {
	return f.holders, nil
}

func (f *fakeHolders) DeleteByInfoHash(ctx context.Context, infoHash string) error {
	f.deleted = true
	return nil
}

type fakeClient struct {
	host      string
	removed   bool
	afterGone bool
}

func (f *fakeClient) Host() string { return f.host }
func (f *fakeClient) RemoveTorrent(ctx context.Context, infoHash string) error {
	f.removed = true
	return nil
}
func (f *fakeClient) IsTorrentPresent(ctx context.Context, infoHash string) (bool, error) {
	return !f.afterGone, nil
}

var standardRules = []domain.ConflictRule{
	{Priority: 1, Trackers: []string{"a"}},
	{Priority: 2, AllIndexers: true},
}
var standardIndexers = map[string]struct{}{"a": {}, "b": {}}

func rulesFunc(rules []domain.ConflictRule) func(context.Context) ([]domain.ConflictRule, error) {
	return func(context.Context) ([]domain.ConflictRule, error) { return rules, nil }
}
func indexersFunc(indexers map[string]struct{}) func(context.Context) (map[string]struct{}, error) {
	return func(context.Context) (map[string]struct{}, error) { return indexers, nil }
}

func TestResolve_HigherPriorityCandidateEvictsIncumbent(t *testing.T) {
	client := &fakeClient{host: "client-1", afterGone: true}
	holders := &fakeHolders{holders: []conflictrules.ClientHolder{{ClientHost: "client-1", Trackers: []string{"b"}}}}

	r := conflictrules.New(rulesFunc(standardRules), indexersFunc(standardIndexers), holders, map[string]conflictrules.TorrentClient{"client-1": client}, zerolog.Nop())

	evicted, err := r.Resolve(context.Background(), "hash1", []string{"a"}, "Some.Release")
	require.NoError(t, err)
	assert.True(t, evicted)
	assert.True(t, client.removed)
	assert.True(t, holders.deleted)
}

func TestResolve_EqualPriorityKeepsIncumbent(t *testing.T) {
	client := &fakeClient{host: "client-1"}
	holders := &fakeHolders{holders: []conflictrules.ClientHolder{{ClientHost: "client-1", Trackers: []string{"b"}}}}

	r := conflictrules.New(rulesFunc(standardRules), indexersFunc(standardIndexers), holders, map[string]conflictrules.TorrentClient{"client-1": client}, zerolog.Nop())

	// Candidate tracker "b" is a configured indexer that the first rule does
	// not name, so candidate and incumbent both land on the allIndexers rule.
	evicted, err := r.Resolve(context.Background(), "hash1", []string{"b"}, "Some.Release")
	require.NoError(t, err)
	assert.False(t, evicted)
	assert.False(t, client.removed)
	assert.False(t, holders.deleted)
}

func TestResolve_EmptyCandidateTrackersNoOp(t *testing.T) {
	holders := &fakeHolders{}
	r := conflictrules.New(rulesFunc(standardRules), indexersFunc(standardIndexers), holders, nil, zerolog.Nop())

	evicted, err := r.Resolve(context.Background(), "hash1", nil, "Some.Release")
	require.NoError(t, err)
	assert.False(t, evicted)
}

func TestResolve_FailedRemovalAbortsWithoutDeletingState(t *testing.T) {
	client := &fakeClient{host: "client-1", afterGone: false} // still present after "removal"
	holders := &fakeHolders{holders: []conflictrules.ClientHolder{{ClientHost: "client-1", Trackers: []string{"b"}}}}

	r := conflictrules.New(rulesFunc(standardRules), indexersFunc(standardIndexers), holders, map[string]conflictrules.TorrentClient{"client-1": client}, zerolog.Nop())

	evicted, err := r.Resolve(context.Background(), "hash1", []string{"a"}, "Some.Release")
	require.NoError(t, err)
	assert.False(t, evicted)
	assert.False(t, holders.deleted)
}
