// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"

	"github.com/s0up4200/xseed/internal/domain"
)

// ErrMagnetLink and ErrRateLimited are the two snatch failure kinds the
// engine maps to their own decisions rather than the generic download
// failure; any other error maps to DOWNLOAD_FAILED.
var (
	ErrMagnetLink  = errors.New("snatch: candidate is a magnet link")
	ErrRateLimited = errors.New("snatch: rate limited by indexer")
)

// Snatcher fetches and parses the metafile for a candidate's download link.
// Implementations own their own HTTP client and timeout; this package treats
// network failures as opaque errors mapped via ErrMagnetLink/ErrRateLimited.
type Snatcher interface {
	Snatch(ctx context.Context, candidate domain.Candidate) (domain.Metafile, []byte, error)
}

const snatchMaxAttempts = 4

// snatchDelay returns the retry delay the contract names: 1 minute, except
// 5 minutes for searchees whose label is ANNOUNCE (freshly-announced
// releases are more likely to be briefly rate-limited right after an
// announce storm, so the engine backs off further before retrying).
func snatchDelay(label domain.SearcheeLabel) time.Duration {
	if label == domain.LabelAnnounce {
		return 5 * time.Minute
	}
	return time.Minute
}

// snatchWithRetry wraps Snatcher.Snatch with the retry policy and maps the
// terminal error to the engine's protocol decisions.
func snatchWithRetry(ctx context.Context, snatcher Snatcher, candidate domain.Candidate, label domain.SearcheeLabel) (domain.Metafile, []byte, domain.Decision, error) {
	var metafile domain.Metafile
	var raw []byte

	err := retry.Do(
		func() error {
			m, r, err := snatcher.Snatch(ctx, candidate)
			if err != nil {
				if errors.Is(err, ErrMagnetLink) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			metafile, raw = m, r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(snatchMaxAttempts),
		retry.Delay(snatchDelay(label)),
		retry.LastErrorOnly(true),
	)

	if err == nil {
		return metafile, raw, "", nil
	}
	switch {
	case errors.Is(err, ErrMagnetLink):
		return domain.Metafile{}, nil, domain.DecisionMagnetLink, err
	case errors.Is(err, ErrRateLimited):
		return domain.Metafile{}, nil, domain.DecisionRateLimited, err
	default:
		return domain.Metafile{}, nil, domain.DecisionDownloadFailed, err
	}
}
