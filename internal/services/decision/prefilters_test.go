// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"testing"

	"github.com/moistari/rls"
	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/xseed/internal/domain"
)

func TestCompareReleaseAttr(t *testing.T) {
	assert.Equal(t, domain.Decision(""), compareReleaseAttr("", "1080P", domain.DecisionResolutionMismatch))
	assert.Equal(t, domain.Decision(""), compareReleaseAttr("1080P", "", domain.DecisionResolutionMismatch))
	assert.Equal(t, domain.Decision(""), compareReleaseAttr("1080P", "1080P", domain.DecisionResolutionMismatch))
	assert.Equal(t, domain.DecisionResolutionMismatch, compareReleaseAttr("1080P", "720P", domain.DecisionResolutionMismatch))
}

func TestFilterReleaseGroup(t *testing.T) {
	source := rls.ParseString("Some.Movie.2020.1080p.BluRay-GRPA")
	sameGroup := rls.ParseString("Some.Movie.2020.1080p.WEB-GRPA")
	otherGroup := rls.ParseString("Some.Movie.2020.1080p.BluRay-GRPB")

	assert.Equal(t, domain.Decision(""), filterReleaseGroup(source, sameGroup))
	assert.Equal(t, domain.DecisionReleaseGroupMismatch, filterReleaseGroup(source, otherGroup))
}

func TestFilterResolution(t *testing.T) {
	source := rls.ParseString("Some.Movie.2020.1080p.BluRay-GRPA")
	lowerRes := rls.ParseString("Some.Movie.2020.720p.BluRay-GRPA")

	assert.Equal(t, domain.DecisionResolutionMismatch, filterResolution(source, lowerRes))
}

func TestFilterSource_NormalizesWebAliases(t *testing.T) {
	source := rls.ParseString("Some.Movie.2020.1080p.WEB-DL-GRPA")
	webRip := rls.ParseString("Some.Movie.2020.1080p.WEBRip-GRPA")
	webDl := rls.ParseString("Some.Movie.2020.1080p.WEBDL-GRPA")

	assert.Equal(t, domain.DecisionSourceMismatch, filterSource(source, webRip))
	assert.Equal(t, domain.Decision(""), filterSource(source, webDl))
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, isBlocked("Some.Cam.Rip-GRP", []string{"cam"}))
	assert.False(t, isBlocked("Some.BluRay-GRP", []string{"cam"}))
}
