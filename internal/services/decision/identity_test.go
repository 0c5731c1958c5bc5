// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/xseed/internal/domain"
)

func TestTrackersEqual_IgnoresCaseOrderAndWhitespace(t *testing.T) {
	assert.True(t, trackersEqual([]string{" Tracker.A ", "tracker.b"}, []string{"TRACKER.B", "tracker.a"}))
	assert.False(t, trackersEqual([]string{"tracker.a"}, []string{"tracker.a", "tracker.b"}))
}

func TestClassifyIdentity_SameInfoHashTrackerMismatch(t *testing.T) {
	metafile := domain.Metafile{InfoHash: "aaaa", Trackers: []string{"tracker.b"}}
	searchee := domain.Searchee{InfoHash: "AAAA"}

	result := classifyIdentity(metafile, searchee, map[string]struct{}{}, []string{"tracker.a"})
	assert.Equal(t, domain.DecisionInfoHashAlreadyExistsAnotherTracker, result.Decision)
	assert.True(t, result.TrackerMismatch)
	assert.True(t, result.Excluded)
}

func TestClassifyIdentity_ExcludedHashNoMismatch(t *testing.T) {
	metafile := domain.Metafile{InfoHash: "bbbb", Trackers: []string{"tracker.a"}}
	searchee := domain.Searchee{InfoHash: "other"}

	result := classifyIdentity(metafile, searchee, map[string]struct{}{"bbbb": {}}, []string{"tracker.a"})
	assert.Equal(t, domain.DecisionInfoHashAlreadyExists, result.Decision)
	assert.False(t, result.TrackerMismatch)
}

func TestClassifyIdentity_NoCollision(t *testing.T) {
	metafile := domain.Metafile{InfoHash: "cccc"}
	searchee := domain.Searchee{InfoHash: "other"}

	result := classifyIdentity(metafile, searchee, map[string]struct{}{"zzzz": {}}, nil)
	assert.Equal(t, domain.Decision(""), result.Decision)
	assert.False(t, result.Excluded)
}
