// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"strings"

	"github.com/moistari/rls"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/pkg/releases"
)

// preFilter is one step of the candidate-form pre-filter pipeline. It
// receives both sides parsed via rls and returns the rejection decision, or
// "" when the step passes. Every step passes if either side lacks the
// attribute being compared.
type preFilter func(source, candidate rls.Release) domain.Decision

// runPreFilters applies the pre-filter pipeline in the fixed order the
// engine's contract names: release-group, resolution, source,
// proper/repack, fuzzy size, download-link presence. Fuzzy size and
// download-link presence are checked separately by the caller since they
// need values outside of rls.Release; this only covers the release-metadata
// steps.
func runPreFilters(source, candidate rls.Release) domain.Decision {
	for _, f := range []preFilter{
		filterReleaseGroup,
		filterResolution,
		filterSource,
		filterProperRepack,
	} {
		if d := f(source, candidate); d != "" {
			return d
		}
	}
	return ""
}

// releaseGroup returns rls's Group field (the trailing "-GRP" token),
// falling back to a leading "[GRP]" tag in the title for anime releases.
func releaseGroup(r rls.Release) string {
	if g := strings.TrimSpace(r.Group); g != "" {
		return strings.ToUpper(g)
	}
	// Anime releases often carry the group as a leading "[GRP]" tag rather
	// than a trailing "-GRP" suffix; rls exposes that as Release.Site or
	// folds it into Title depending on parse path, so fall back to
	// extracting a leading bracketed tag from the raw title.
	title := strings.TrimSpace(r.Title)
	if strings.HasPrefix(title, "[") {
		if end := strings.Index(title, "]"); end > 1 {
			return strings.ToUpper(title[1:end])
		}
	}
	return ""
}

// compareReleaseAttr applies the "pass if either side lacks the attribute"
// rule to a single extracted release attribute — the shape every pre-filter
// comparing one rls-derived field reduces to, instead of repeating its own
// inline presence/equality block.
func compareReleaseAttr(sourceVal, candidateVal string, mismatch domain.Decision) domain.Decision {
	if sourceVal == "" || candidateVal == "" {
		return ""
	}
	if sourceVal != candidateVal {
		return mismatch
	}
	return ""
}

func filterReleaseGroup(source, candidate rls.Release) domain.Decision {
	return compareReleaseAttr(releaseGroup(source), releaseGroup(candidate), domain.DecisionReleaseGroupMismatch)
}

func filterResolution(source, candidate rls.Release) domain.Decision {
	sr := strings.ToUpper(strings.TrimSpace(source.Resolution))
	cr := strings.ToUpper(strings.TrimSpace(candidate.Resolution))
	return compareReleaseAttr(sr, cr, domain.DecisionResolutionMismatch)
}

func filterSource(source, candidate rls.Release) domain.Decision {
	ss := releases.NormalizeSource(source.Source)
	cs := releases.NormalizeSource(candidate.Source)
	return compareReleaseAttr(ss, cs, domain.DecisionSourceMismatch)
}

// isProperOrRepack reports whether a release's "Other" tags mark it as a
// Proper or Repack — releases that intentionally supersede an earlier,
// defective upload of the same content.
func isProperOrRepack(r rls.Release) bool {
	for _, tag := range r.Other {
		switch strings.ToUpper(tag) {
		case "PROPER", "REPACK", "REAL":
			return true
		}
	}
	return false
}

func filterProperRepack(source, candidate rls.Release) domain.Decision {
	if isProperOrRepack(source) != isProperOrRepack(candidate) {
		return domain.DecisionProperRepackMismatch
	}
	return ""
}

// fuzzySizeMismatch implements the contract's tolerance check:
// |candidate.size - searchee.length| / searchee.length <= fuzzySizeFactor.
// A candidate with no advisory size is never rejected on this basis.
func fuzzySizeMismatch(candidateSize, searcheeLength int64, fuzzySizeFactor float64) bool {
	if candidateSize <= 0 || searcheeLength <= 0 {
		return false
	}
	diff := candidateSize - searcheeLength
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(searcheeLength) > fuzzySizeFactor
}

// isBlocked reports a substring match against the block list, applied to
// name (the searchee title or the candidate name pre-snatch, or the parsed
// metafile name post-snatch).
func isBlocked(name string, blockList []string) bool {
	lowerName := strings.ToLower(name)
	for _, term := range blockList {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(lowerName, term) {
			return true
		}
	}
	return false
}
