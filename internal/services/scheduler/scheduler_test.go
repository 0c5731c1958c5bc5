// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/scheduler"
)

func newTestScheduler(t *testing.T) (*scheduler.Scheduler, *models.JobLogStore) {
	t.Helper()
	db, err := database.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jobLog := models.NewJobLogStore(db)
	return scheduler.New(jobLog, zerolog.Nop()), jobLog
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestScheduler_RunsEligibleJobOnFirstTick(t *testing.T) {
	s, jobLog := newTestScheduler(t)
	var ran int32
	job := &scheduler.Job{
		Name:    scheduler.JobCleanup,
		Cadence: time.Hour,
		Executor: func(ctx context.Context, cfg map[string]any) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	}
	s.Register(job)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&ran) == 1 })
	cancel()
	require.NoError(t, <-done)

	_, err := jobLog.LastRun(context.Background(), string(scheduler.JobCleanup))
	require.NoError(t, err)
}

func TestScheduler_RSSActiveSkipsAllJobsForTheTick(t *testing.T) {
	s, _ := newTestScheduler(t)

	unblock := make(chan struct{})
	var rssStarted sync.WaitGroup
	rssStarted.Add(1)
	rssJob := &scheduler.Job{
		Name:    scheduler.JobRSS,
		Cadence: time.Millisecond,
		Executor: func(ctx context.Context, cfg map[string]any) error {
			rssStarted.Done()
			<-unblock
			return nil
		},
	}

	var cleanupRan int32
	cleanupJob := &scheduler.Job{
		Name:    scheduler.JobCleanup,
		Cadence: time.Millisecond,
		Executor: func(ctx context.Context, cfg map[string]any) error {
			atomic.AddInt32(&cleanupRan, 1)
			return nil
		},
	}

	s.Register(rssJob)
	s.Register(cleanupJob)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	rssStarted.Wait()
	time.Sleep(30 * time.Millisecond) // several ticks while RSS holds isActive
	require.EqualValues(t, 0, atomic.LoadInt32(&cleanupRan), "CLEANUP must not run while RSS is active")

	close(unblock)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_FatalErrorTerminatesRun(t *testing.T) {
	s, _ := newTestScheduler(t)
	boom := errors.New("indexer API key revoked")
	job := &scheduler.Job{
		Name:    scheduler.JobUpdateIndexerCaps,
		Cadence: time.Millisecond,
		Executor: func(ctx context.Context, cfg map[string]any) error {
			return &scheduler.FatalError{Err: boom}
		},
	}
	s.Register(job)

	err := s.Run(context.Background(), 5*time.Millisecond)
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestScheduler_RunAheadOfScheduleBypassesCadence(t *testing.T) {
	s, jobLog := newTestScheduler(t)
	require.NoError(t, jobLog.Touch(context.Background(), string(scheduler.JobInject)))

	var ran int32
	job := &scheduler.Job{
		Name:    scheduler.JobInject,
		Cadence: time.Hour, // would not be eligible again for an hour
		Executor: func(ctx context.Context, cfg map[string]any) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	}
	s.Register(job)
	job.RunAheadOfSchedule()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&ran) == 1 })
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_ShouldRunFalseNeverRuns(t *testing.T) {
	s, _ := newTestScheduler(t)
	var ran int32
	job := &scheduler.Job{
		Name:      scheduler.JobRSS,
		Cadence:   time.Millisecond,
		ShouldRun: func() bool { return false },
		Executor: func(ctx context.Context, cfg map[string]any) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	}
	s.Register(job)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	time.Sleep(40 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	require.EqualValues(t, 0, atomic.LoadInt32(&ran))
}
