// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// ConflictRule is one priority band in an operator-configured eviction policy.
// Priority 1 is highest; AllIndexers, when true, matches any tracker currently
// configured as an indexer rather than an explicit Trackers list.
type ConflictRule struct {
	ID          int64
	Priority    int
	AllIndexers bool
	Trackers    []string
}

// Matches reports whether host is governed by this rule, given the current
// set of indexer-configured trackers.
func (r ConflictRule) Matches(host string, indexerTrackers map[string]struct{}) bool {
	if r.AllIndexers {
		_, ok := indexerTrackers[host]
		return ok
	}
	for _, t := range r.Trackers {
		if t == host {
			return true
		}
	}
	return false
}
