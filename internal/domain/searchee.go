// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// SearcheeLabel tags how a Searchee entered the pipeline, since retry cadence
// and eligibility for season-pack guards depend on provenance.
type SearcheeLabel string

const (
	LabelSearch   SearcheeLabel = "SEARCH"
	LabelAnnounce SearcheeLabel = "ANNOUNCE"
	LabelRSS      SearcheeLabel = "RSS"
	LabelInject   SearcheeLabel = "INJECT"
	LabelWebhook  SearcheeLabel = "WEBHOOK"
)

// Searchee is content already seeded locally that candidates are matched
// against. InfoHash is present for client-sourced searchees; Path is present
// for filesystem-sourced ones. Neither is guaranteed.
type Searchee struct {
	Title    string
	InfoHash string
	Path     string
	Files    []File
	Length   int64
	Label    SearcheeLabel
}

// HasIdentity reports whether the searchee was sourced from a live client or
// the filesystem, which determines whether file-tree matching compares paths
// (identity known) or only basenames (identity unknown, e.g. RSS/SEARCH).
func (s Searchee) HasIdentity() bool {
	return s.InfoHash != "" || s.Path != ""
}
