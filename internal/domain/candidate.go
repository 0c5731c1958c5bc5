// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Candidate is a single search hit returned by an indexer, not yet snatched.
type Candidate struct {
	Name      string
	GUID      string
	Link      string
	Tracker   string
	IndexerID int
	Size      int64 // advisory; 0 means unknown
}

// HasSize reports whether the indexer advertised a size for this hit.
func (c Candidate) HasSize() bool {
	return c.Size > 0
}
