// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// normalizeTrackerList trims, lowercases, dedupes, and sorts a list of
// tracker hostnames, matching the data model's tracker-normalization rule.
func normalizeTrackerList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		t := normalizeLowerTrim(strings.TrimSpace(v))
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

// encodeTrackerJSON serializes a tracker list as the sorted-unique JSON array
// the schema's JSON columns are required to hold.
func encodeTrackerJSON(values []string) (string, error) {
	normalized := normalizeTrackerList(values)
	if normalized == nil {
		normalized = []string{}
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeTrackerJSON parses a tracker JSON column, tolerating an empty or
// malformed column by returning an empty, non-nil slice.
func decodeTrackerJSON(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	return normalizeTrackerList(values)
}

// unionTrackerJSON merges additional trackers into an existing JSON column,
// implementing the append-only union required after a successful snatch.
func unionTrackerJSON(existing string, additions []string) (string, error) {
	merged := append(decodeTrackerJSON(existing), additions...)
	return encodeTrackerJSON(merged)
}
