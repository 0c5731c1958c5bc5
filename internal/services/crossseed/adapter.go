// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package crossseed

import (
	"context"

	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/conflictrules"
)

// clientSearcheeLister adapts models.ClientSearcheeStore to
// conflictrules.ClientSearcheeLister. conflictrules deliberately doesn't
// import internal/models (it stays usable against any persistence layer),
// so the type translation lives here, in the wiring layer, rather than in
// that package.
type clientSearcheeLister struct {
	store *models.ClientSearcheeStore
}

func (l clientSearcheeLister) ByInfoHash(ctx context.Context, infoHash string) ([]conflictrules.ClientHolder, error) {
	rows, err := l.store.ByInfoHash(ctx, infoHash)
	if err != nil {
		return nil, err
	}
	holders := make([]conflictrules.ClientHolder, len(rows))
	for i, r := range rows {
		holders[i] = conflictrules.ClientHolder{ClientHost: r.ClientHost, Trackers: r.Trackers}
	}
	return holders, nil
}

func (l clientSearcheeLister) DeleteByInfoHash(ctx context.Context, infoHash string) error {
	return l.store.DeleteByInfoHash(ctx, infoHash)
}
