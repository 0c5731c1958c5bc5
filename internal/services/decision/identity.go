// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"sort"
	"strings"

	"github.com/s0up4200/xseed/internal/domain"
)

// normalizeTrackers trims, lowercases, sorts, and dedupes a tracker list for
// set comparison.
func normalizeTrackers(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		t := strings.ToLower(strings.TrimSpace(v))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// trackersEqual reports whether two tracker sets are equal after
// normalization.
func trackersEqual(a, b []string) bool {
	na, nb := normalizeTrackers(a), normalizeTrackers(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

// IdentityResult is the outcome of comparing a freshly-snatched metafile's
// info hash against the searchee's own hash and the set of locally-known
// (excluded) hashes.
type IdentityResult struct {
	Decision        domain.Decision
	TrackerMismatch bool
	// Excluded is true when metafile.InfoHash collided with a hash already
	// known locally (searchee's own, or another excluded hash) and content
	// matching must therefore be skipped in favor of the identity decision,
	// unless conflict resolution clears the hash for the caller to retry.
	Excluded bool
}

// classifyIdentity implements the contract's identity-check step, run after
// a successful snatch and before content matching.
func classifyIdentity(metafile domain.Metafile, searchee domain.Searchee, excludedInfoHashes map[string]struct{}, knownTrackers []string) IdentityResult {
	if searchee.InfoHash != "" && strings.EqualFold(metafile.InfoHash, searchee.InfoHash) {
		mismatch := !trackersEqual(metafile.Trackers, knownTrackers)
		if !mismatch {
			return IdentityResult{Decision: domain.DecisionSameInfoHash, Excluded: true}
		}
		return IdentityResult{Decision: domain.DecisionInfoHashAlreadyExistsAnotherTracker, TrackerMismatch: true, Excluded: true}
	}

	if _, collided := excludedInfoHashes[strings.ToLower(metafile.InfoHash)]; collided {
		mismatch := !trackersEqual(metafile.Trackers, knownTrackers)
		if mismatch {
			return IdentityResult{Decision: domain.DecisionInfoHashAlreadyExistsAnotherTracker, TrackerMismatch: true, Excluded: true}
		}
		return IdentityResult{Decision: domain.DecisionInfoHashAlreadyExists, Excluded: true}
	}

	return IdentityResult{}
}
