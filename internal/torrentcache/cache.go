// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torrentcache implements the content-addressed on-disk cache of
// snatched torrent metafiles, keyed by info hash.
package torrentcache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/pkg/hashutil"
)

// ErrCacheMiss is returned when infoHash has no cached metafile, including
// the case where a cached file existed but failed to parse and was removed.
var ErrCacheMiss = errors.New("torrentcache: cache miss")

const fileSuffix = ".cached.torrent"

// Cache is a directory of "{infoHash}.cached.torrent" files, one per snatched
// release. Reads touch mtime, which List reports as Entry.ModTime; the
// cleanup job removes entries no decision row references, whatever their
// mtime.
type Cache struct {
	dir    string
	logger zerolog.Logger
}

func New(dir string, logger zerolog.Logger) *Cache {
	return &Cache{dir: dir, logger: logger.With().Str("component", "torrentcache").Logger()}
}

func (c *Cache) path(infoHash string) string {
	return filepath.Join(c.dir, hashutil.Normalize(infoHash)+fileSuffix)
}

// Has reports whether a cached file exists for infoHash, without validating
// its contents.
func (c *Cache) Has(infoHash string) bool {
	_, err := os.Stat(c.path(infoHash))
	return err == nil
}

// Write persists raw bencoded torrent bytes under infoHash, creating the
// cache directory if necessary.
func (c *Cache) Write(infoHash string, raw []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create torrent cache dir: %w", err)
	}
	if err := os.WriteFile(c.path(infoHash), raw, 0o644); err != nil {
		return fmt.Errorf("write cached torrent: %w", err)
	}
	return nil
}

// Read loads and parses the cached metafile for infoHash, touching its mtime
// on success. A corrupt cached file is deleted on a best-effort basis (the
// unlink failure is logged, never masking the parse error) and reported as a
// cache miss rather than surfaced as a parse error, matching the torrent
// source's tolerance for a damaged cache.
func (c *Cache) Read(infoHash string) (*domain.Metafile, error) {
	path := c.path(infoHash)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("read cached torrent: %w", err)
	}

	mf, parseErr := parseMetafile(raw)
	if parseErr != nil {
		if unlinkErr := os.Remove(path); unlinkErr != nil && !os.IsNotExist(unlinkErr) {
			c.logger.Warn().Err(unlinkErr).Str("path", path).Msg("failed to remove corrupt cached torrent")
		}
		return nil, ErrCacheMiss
	}

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("failed to touch cached torrent mtime")
	}

	return mf, nil
}

// Remove deletes the cached file for infoHash, if present.
func (c *Cache) Remove(infoHash string) error {
	err := os.Remove(c.path(infoHash))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Entry describes one cached file, for the cleanup job's retention sweep.
type Entry struct {
	InfoHash string
	ModTime  time.Time
}

// List enumerates every cached entry in the directory.
func (c *Cache) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list torrent cache dir: %w", err)
	}

	out := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if filepath.Ext(name) != ".torrent" || len(name) <= len(fileSuffix) {
			continue
		}
		infoHash, ok := trimSuffix(name, fileSuffix)
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{InfoHash: infoHash, ModTime: info.ModTime()})
	}
	return out, nil
}

func trimSuffix(name, suffix string) (string, bool) {
	if len(name) <= len(suffix) {
		return "", false
	}
	if name[len(name)-len(suffix):] != suffix {
		return "", false
	}
	return name[:len(name)-len(suffix)], true
}

func parseMetafile(raw []byte) (*domain.Metafile, error) {
	mi, err := metainfo.Load(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode bencode metainfo: %w", err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("unmarshal info dict: %w", err)
	}

	files := make([]domain.File, 0, len(info.Files))
	if len(info.Files) == 0 {
		files = append(files, domain.File{Name: info.Name, Path: info.Name, Length: info.Length})
	} else {
		for _, f := range info.Files {
			path := filepath.Join(f.Path...)
			files = append(files, domain.File{Name: filepath.Base(path), Path: path, Length: f.Length})
		}
	}

	private := domain.PrivateUnknown
	if info.Private != nil {
		if *info.Private {
			private = domain.PrivateTrue
		} else {
			private = domain.PrivateFalse
		}
	}

	return &domain.Metafile{
		InfoHash:    mi.HashInfoBytes().HexString(),
		Length:      info.TotalLength(),
		PieceLength: info.PieceLength,
		Files:       files,
		Trackers:    flattenAnnounceList(mi),
		Private:     private,
	}, nil
}

func flattenAnnounceList(mi *metainfo.MetaInfo) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	add(mi.Announce)
	for _, tier := range mi.AnnounceList {
		for _, u := range tier {
			add(u)
		}
	}
	return out
}
