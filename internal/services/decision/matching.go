// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/moistari/rls"

	"github.com/s0up4200/xseed/internal/domain"
)

// releaseKey distinguishes releases describing genuinely different content
// (different episode, different air date) from variant re-encodes of the
// same content. ReleaseCache.Key serializes it; seasonPackGuard does not use
// it.
type releaseKey struct {
	series, episode    int
	year, month, day   int
}

func makeReleaseKey(r rls.Release) releaseKey {
	switch {
	case r.Series > 0 && r.Episode > 0:
		return releaseKey{series: r.Series, episode: r.Episode}
	case r.Series > 0:
		return releaseKey{series: r.Series}
	case r.Year > 0 && r.Month > 0 && r.Day > 0:
		return releaseKey{year: r.Year, month: r.Month, day: r.Day}
	case r.Year > 0:
		return releaseKey{year: r.Year}
	default:
		return releaseKey{}
	}
}

// String serializes a releaseKey into a stable string for use as a release
// metadata cache key.
func (k releaseKey) String() string {
	return fmt.Sprintf("%d|%d|%d|%d|%d", k.series, k.episode, k.year, k.month, k.day)
}

var seasonPackTitleRegexp = regexp.MustCompile(`(?i)\bS\d{1,2}\b(?:[^E]|$)`)

// isSeasonPackTitle reports whether name looks like a season-pack request
// (e.g. "Show.Name.S03") rather than naming a specific episode.
func isSeasonPackTitle(name string) bool {
	return seasonPackTitleRegexp.MatchString(name)
}

// seasonPackGuard implements the contract's guard: a searchee that names a
// season pack must not silently match a metafile that turns out to be a
// single episode, unless the caller explicitly opted into that with
// includeSingleEpisodes.
func seasonPackGuard(searcheeTitle string, candidate rls.Release, includeSingleEpisodes bool) bool {
	if includeSingleEpisodes {
		return false
	}
	if !isSeasonPackTitle(searcheeTitle) {
		return false
	}
	return candidate.Series > 0 && candidate.Episode > 0
}

// fileKey is the comparison key used when pairing candidate files against
// searchee files: path when the searchee carries strong identity (infoHash
// or a filesystem path), name otherwise.
func fileKey(f domain.File, preferPath bool) string {
	if preferPath && f.Path != "" {
		return f.Path
	}
	return f.Name
}

// MatchResult is the outcome of comparing a metafile's file list against a
// searchee's, prior to any identity-collision classification.
type MatchResult struct {
	Decision     domain.Decision
	MatchedBytes int64
}

// CompareFileTrees runs the full/size-only/partial matching cascade the
// contract names. strictMatching disables size-only and partial matching
// entirely (every candidate file must pair by length AND path-or-name).
func CompareFileTrees(searchee domain.Searchee, candidate domain.Metafile, minSizeRatio float64, strictMatching bool) MatchResult {
	preferPath := searchee.HasIdentity()

	if full, matched := compareFileTreesFull(searchee.Files, candidate.Files, preferPath); full {
		return MatchResult{Decision: domain.DecisionMatch, MatchedBytes: matched}
	}

	if strictMatching {
		return MatchResult{Decision: domain.DecisionFileTreeMismatch}
	}

	if sizeOnly, matched := compareFileTreesSizeOnly(searchee.Files, candidate.Files); sizeOnly {
		return MatchResult{Decision: domain.DecisionMatchSizeOnly, MatchedBytes: matched}
	}

	matchedBytes := greedyMatchedLength(searchee.Files, candidate.Files)
	if matchedBytes == 0 {
		return MatchResult{Decision: domain.DecisionFileTreeMismatch}
	}

	totalPieces := candidate.TotalPieces()
	if totalPieces == 0 {
		return MatchResult{Decision: domain.DecisionFileTreeMismatch}
	}

	matchedPieceLength := candidate.PieceLength
	if matchedPieceLength <= 0 {
		matchedPieceLength = 1
	}
	matchedPieces := matchedBytes / matchedPieceLength
	ratio := float64(matchedPieces) / float64(totalPieces)

	if ratio >= minSizeRatio {
		return MatchResult{Decision: domain.DecisionMatchPartial, MatchedBytes: matchedBytes}
	}
	if matchedBytes < candidate.Length {
		return MatchResult{Decision: domain.DecisionPartialSizeMismatch, MatchedBytes: matchedBytes}
	}
	return MatchResult{Decision: domain.DecisionSizeMismatch, MatchedBytes: matchedBytes}
}

// compareFileTreesFull requires a bijection: every candidate file pairs with
// a distinct searchee file of equal length and equal path-or-name.
func compareFileTreesFull(searcheeFiles, candidateFiles []domain.File, preferPath bool) (bool, int64) {
	if len(searcheeFiles) != len(candidateFiles) {
		return false, 0
	}
	remaining := make(map[string]domain.File, len(searcheeFiles))
	for _, f := range searcheeFiles {
		remaining[fileKey(f, preferPath)] = f
	}

	var matched int64
	for _, cf := range candidateFiles {
		sf, ok := remaining[fileKey(cf, preferPath)]
		if !ok || sf.Length != cf.Length {
			return false, 0
		}
		delete(remaining, fileKey(cf, preferPath))
		matched += cf.Length
	}
	return true, matched
}

// compareFileTreesSizeOnly requires a bijection purely on length, names
// unconstrained — only reachable outside strict mode.
func compareFileTreesSizeOnly(searcheeFiles, candidateFiles []domain.File) (bool, int64) {
	if len(searcheeFiles) != len(candidateFiles) {
		return false, 0
	}
	remaining := make([]int64, len(searcheeFiles))
	for i, f := range searcheeFiles {
		remaining[i] = f.Length
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })

	candidateLengths := make([]int64, len(candidateFiles))
	var total int64
	for i, f := range candidateFiles {
		candidateLengths[i] = f.Length
		total += f.Length
	}
	sort.Slice(candidateLengths, func(i, j int) bool { return candidateLengths[i] < candidateLengths[j] })

	for i := range remaining {
		if remaining[i] != candidateLengths[i] {
			return false, 0
		}
	}
	return true, total
}

// greedyMatchedLength sums the length of candidate files that find a
// same-length searchee file, consuming each searchee file at most once
// (length-then-name preference on ties, per the contract).
func greedyMatchedLength(searcheeFiles, candidateFiles []domain.File) int64 {
	byLength := make(map[int64][]domain.File)
	for _, f := range searcheeFiles {
		byLength[f.Length] = append(byLength[f.Length], f)
	}

	var matched int64
	for _, cf := range candidateFiles {
		bucket := byLength[cf.Length]
		if len(bucket) == 0 {
			continue
		}
		// Prefer an exact name match within the bucket, else take any.
		idx := 0
		for i, sf := range bucket {
			if sf.Name == cf.Name || sf.Path == cf.Path {
				idx = i
				break
			}
		}
		byLength[cf.Length] = append(bucket[:idx], bucket[idx+1:]...)
		matched += cf.Length
	}
	return matched
}
