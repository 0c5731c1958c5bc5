// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/models"
)

func TestJobLogStore_TouchAndLastRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	store := models.NewJobLogStore(db)

	_, err := store.LastRun(ctx, "RSS")
	assert.ErrorIs(t, err, models.ErrJobLogNotFound)

	require.NoError(t, store.Touch(ctx, "RSS"))
	first, err := store.LastRun(ctx, "RSS")
	require.NoError(t, err)
	assert.NotZero(t, first)

	time.Sleep(time.Second)
	require.NoError(t, store.Touch(ctx, "RSS"))
	second, err := store.LastRun(ctx, "RSS")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second, first)
}
