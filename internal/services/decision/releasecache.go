// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/moistari/rls"
)

// ReleaseCache memoizes rls.ParseString results keyed by the raw release
// name, avoiding repeated parsing of the same candidate/searchee title
// across many assessments in a single RSS or bulk-search pass.
type ReleaseCache struct {
	cache *ttlcache.Cache[string, rls.Release]
}

func NewReleaseCache() *ReleaseCache {
	return &ReleaseCache{
		cache: ttlcache.New(ttlcache.Options[string, rls.Release]{}.SetDefaultTTL(10 * time.Minute)),
	}
}

func (c *ReleaseCache) Parse(name string) rls.Release {
	if name == "" {
		return rls.Release{}
	}
	if cached, ok := c.cache.Get(name); ok {
		return cached
	}
	release := rls.ParseString(name)
	c.cache.Set(name, release, ttlcache.DefaultTTL)
	return release
}

// Key returns the stable releaseKey string for name, used as a secondary
// cache axis distinguishing which underlying content a release describes
// (a specific episode, a season, a dated release) from its encode variant.
func (c *ReleaseCache) Key(name string) string {
	return makeReleaseKey(c.Parse(name)).String()
}
