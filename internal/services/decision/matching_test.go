// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"testing"

	"github.com/moistari/rls"
	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/xseed/internal/domain"
)

func TestCompareFileTrees_FullMatch(t *testing.T) {
	searchee := domain.Searchee{
		Files: []domain.File{
			{Path: "a", Name: "a", Length: 100},
			{Path: "b", Name: "b", Length: 200},
		},
	}
	candidate := domain.Metafile{
		Files: []domain.File{
			{Path: "a", Name: "a", Length: 100},
			{Path: "b", Name: "b", Length: 200},
		},
		Length:      300,
		PieceLength: 16384,
	}

	result := CompareFileTrees(searchee, candidate, 0.95, false)
	assert.Equal(t, domain.DecisionMatch, result.Decision)
}

func TestCompareFileTrees_SizeOnlyMatch(t *testing.T) {
	searchee := domain.Searchee{
		Files: []domain.File{
			{Path: "a", Name: "a", Length: 100},
			{Path: "b", Name: "b", Length: 200},
		},
	}
	candidate := domain.Metafile{
		Files: []domain.File{
			{Path: "x", Name: "x", Length: 200},
			{Path: "y", Name: "y", Length: 100},
		},
		Length:      300,
		PieceLength: 16384,
	}

	flexible := CompareFileTrees(searchee, candidate, 0.95, false)
	assert.Equal(t, domain.DecisionMatchSizeOnly, flexible.Decision)

	strict := CompareFileTrees(searchee, candidate, 0.95, true)
	assert.Equal(t, domain.DecisionFileTreeMismatch, strict.Decision)
}

func TestFuzzySizeMismatch_RejectsOutsideTolerance(t *testing.T) {
	assert.True(t, fuzzySizeMismatch(2000, 1000, 0.02))
	assert.False(t, fuzzySizeMismatch(1010, 1000, 0.02))
}

func TestSeasonPackGuard_BlocksSingleEpisodeAgainstPackTitle(t *testing.T) {
	candidate := rls.ParseString("Show.Name.S03E02.1080p-GRP")
	assert.True(t, seasonPackGuard("Show.Name.S03", candidate, false))
	assert.False(t, seasonPackGuard("Show.Name.S03", candidate, true))
	assert.False(t, seasonPackGuard("Show.Name.S03E02", candidate, false))
}
