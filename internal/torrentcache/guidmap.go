// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentcache

import "sync"

// GUIDKey identifies a candidate result by its indexer GUID and download
// link, the pair a single indexer may reuse across re-announces of the same
// release.
type GUIDKey struct {
	GUID string
	Link string
}

// GUIDInfoHashMap is an in-memory (guid, link) -> infoHash map of metafiles
// already resolved this process lifetime. All access is serialized through
// the map's own mutex (the GUID_INFO_HASH_MAP lock), so it can be shared
// across concurrently running jobs. Nothing in this module reads or fills it
// outside its tests; the decision engine snatches every candidate that
// passes the pre-filters.
type GUIDInfoHashMap struct {
	mu sync.Mutex
	m  map[GUIDKey]string
}

func NewGUIDInfoHashMap() *GUIDInfoHashMap {
	return &GUIDInfoHashMap{m: make(map[GUIDKey]string)}
}

func (g *GUIDInfoHashMap) Get(guid, link string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	infoHash, ok := g.m[GUIDKey{GUID: guid, Link: link}]
	return infoHash, ok
}

func (g *GUIDInfoHashMap) Set(guid, link, infoHash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m[GUIDKey{GUID: guid, Link: link}] = infoHash
}

func (g *GUIDInfoHashMap) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
