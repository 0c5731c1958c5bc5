// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package crossseed_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/collision"
	"github.com/s0up4200/xseed/internal/services/crossseed"
	"github.com/s0up4200/xseed/internal/services/decision"
)

type fakeIndexerClient struct {
	hits map[string][]domain.Candidate
}

func (f *fakeIndexerClient) Search(ctx context.Context, name string, configOverride map[string]any) ([]domain.Candidate, error) {
	return f.hits[name], nil
}

func TestSearcher_BulkSearchByNamesWithoutIndexerReturnsZero(t *testing.T) {
	s := &crossseed.Searcher{Logger: zerolog.Nop()}
	attempted, requested, found, err := s.BulkSearchByNames(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, attempted)
	assert.Equal(t, 2, requested)
	assert.Equal(t, 0, found)
}

func TestSearcher_BulkSearchByNamesAssessesEveryCandidate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	metafile := domain.Metafile{
		InfoHash: "5555555555555555555555555555555555555555",
		Files:    []domain.File{{Path: "a", Name: "a", Length: 100}},
		Length:   100,
		Private:  domain.PrivateFalse,
	}
	engine := decision.NewEngine(&fakeSnatcher{metafile: metafile}, fakeCache{}, nil, nil, zerolog.Nop())

	decisions := models.NewDecisionStore(db)
	searchees := models.NewSearcheeStore(db)
	collisions := models.NewCollisionStore(db)
	clients := models.NewClientSearcheeStore(db)
	orch := crossseed.New(db, engine, collision.New(collisions, zerolog.Nop()), decisions, searchees, collisions, clients, zerolog.Nop())

	indexer := &fakeIndexerClient{hits: map[string][]domain.Candidate{
		"Some.Movie.2020.1080p.BluRay-GRP": {
			{Name: "Some.Movie.2020.1080p.BluRay-GRP", GUID: "guid-5", Link: "https://example/dl"},
		},
	}}

	searcher := &crossseed.Searcher{Orchestrator: orch, Indexer: indexer, Logger: zerolog.Nop()}
	attempted, requested, _, err := searcher.BulkSearchByNames(ctx, []string{"Some.Movie.2020.1080p.BluRay-GRP"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)
	assert.Equal(t, 1, requested)

	// A bare name-triggered search carries no local file list, so content
	// matching can't reach MATCH here — but the candidate must still have
	// been run through the orchestrator and persisted.
	se, err := searchees.GetByName(ctx, "Some.Movie.2020.1080p.BluRay-GRP")
	require.NoError(t, err)
	_, err = decisions.Get(ctx, se.ID, "guid-5")
	require.NoError(t, err)
}

func TestSearcher_BulkSearchDelegatesToBulkSearchByNames(t *testing.T) {
	s := &crossseed.Searcher{Logger: zerolog.Nop()}
	err := s.BulkSearch(context.Background(), []string{"a"}, true)
	require.NoError(t, err)
}
