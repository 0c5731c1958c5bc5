// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/bencode"

	"github.com/s0up4200/xseed/internal/torrentcache"
)

func minimalTorrentBytes(t *testing.T, private bool) []byte {
	t.Helper()
	data, err := bencode.EncodeBytes(map[string]interface{}{
		"announce": "https://tracker.example/announce",
		"info": map[string]interface{}{
			"name":         "release.name",
			"piece length": int64(16384),
			"pieces":       "01234567890123456789",
			"length":       int64(1024),
			"private":      boolToInt(private),
		},
	})
	require.NoError(t, err)
	return data
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func TestCache_WriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := torrentcache.New(dir, zerolog.Nop())

	raw := minimalTorrentBytes(t, true)
	require.NoError(t, cache.Write("ABCDEF0123456789ABCDEF0123456789ABCDEF01", raw))

	assert.True(t, cache.Has("abcdef0123456789abcdef0123456789abcdef01"))

	mf, err := cache.Read("ABCDEF0123456789ABCDEF0123456789ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), mf.Length)
	assert.Equal(t, int64(16384), mf.PieceLength)
	assert.Contains(t, mf.Trackers, "https://tracker.example/announce")
}

func TestCache_ReadMissingIsCacheMiss(t *testing.T) {
	cache := torrentcache.New(t.TempDir(), zerolog.Nop())
	_, err := cache.Read("0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, torrentcache.ErrCacheMiss)
}

func TestCache_ReadCorruptFileIsRemovedAndTreatedAsMiss(t *testing.T) {
	dir := t.TempDir()
	cache := torrentcache.New(dir, zerolog.Nop())

	infoHash := "1111111111111111111111111111111111111111"
	path := filepath.Join(dir, infoHash+".cached.torrent")
	require.NoError(t, os.WriteFile(path, []byte("not bencode"), 0o644))

	_, err := cache.Read(infoHash)
	assert.ErrorIs(t, err, torrentcache.ErrCacheMiss)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCache_ListAndRemove(t *testing.T) {
	dir := t.TempDir()
	cache := torrentcache.New(dir, zerolog.Nop())

	require.NoError(t, cache.Write("2222222222222222222222222222222222222222", minimalTorrentBytes(t, false)))
	require.NoError(t, cache.Write("3333333333333333333333333333333333333333", minimalTorrentBytes(t, false)))

	entries, err := cache.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, cache.Remove("2222222222222222222222222222222222222222"))
	entries, err = cache.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
