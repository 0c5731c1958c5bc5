// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scheduler implements the cooperative named-job loop: RSS scans,
// bulk search, indexer-capability refresh, injection flush, database
// cleanup, and collision recheck, run under a mutual-exclusion discipline
// that prevents overlapping runs and defers low-priority jobs while the
// high-priority ones are active.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/xseed/internal/models"
)

// Name identifies a registered job.
type Name string

const (
	JobRSS               Name = "RSS"
	JobSearch            Name = "SEARCH"
	JobUpdateIndexerCaps Name = "UPDATE_INDEXER_CAPS"
	JobInject            Name = "INJECT"
	JobCleanup           Name = "CLEANUP"
	JobCollisionRecheck  Name = "COLLISION_RECHECK"
)

// FatalError marks an executor failure that should terminate the process,
// distinguishing it from the ordinary job errors the scheduler logs and
// swallows.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "scheduler: fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Executor does the job's actual work. cfg carries the per-run config
// override map, nil when none is set.
type Executor func(ctx context.Context, cfg map[string]any) error

// Job is one registered named task.
type Job struct {
	Name      Name
	Cadence   time.Duration
	Executor  Executor
	ShouldRun func() bool // nil means always eligible

	mu                 sync.Mutex
	isActive           bool
	runAheadOfSchedule bool
	delayNextRun       bool
	configOverride     map[string]any
}

func (j *Job) active() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isActive
}

// RunAheadOfSchedule marks j eligible on the next tick regardless of cadence.
func (j *Job) RunAheadOfSchedule() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runAheadOfSchedule = true
}

// DelayNextRun pushes j's next eligible tick out by one additional cadence,
// applied once the in-flight (or next) run completes.
func (j *Job) DelayNextRun() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.delayNextRun = true
}

// SetConfigOverride stashes a one-shot config override consumed by the next
// run and cleared unconditionally afterward.
func (j *Job) SetConfigOverride(cfg map[string]any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.configOverride = cfg
}

// Scheduler runs registered jobs under the checkJobs tick discipline.
type Scheduler struct {
	jobLog *models.JobLogStore
	logger zerolog.Logger

	checkMu sync.Mutex // named CHECK_JOBS: serializes the whole tick

	jobsMu sync.Mutex
	jobs   []*Job

	fatalCh chan error
}

func New(jobLog *models.JobLogStore, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		jobLog:  jobLog,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		fatalCh: make(chan error, 1),
	}
}

// Register adds a job. Call before the scheduler starts ticking.
func (s *Scheduler) Register(j *Job) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.jobs = append(s.jobs, j)
}

// Run ticks every interval until ctx is cancelled. A fatal executor error
// is returned immediately, terminating the caller's process per contract.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-s.fatalCh:
			return err
		case <-ticker.C:
			s.checkJobs(ctx)
		}
	}
}

// checkJobs is one tick, serialized under CHECK_JOBS. Eligible jobs launch
// asynchronously; a fatal executor error is reported on fatalCh by the
// launched goroutine once that job completes, not synchronously here.
func (s *Scheduler) checkJobs(ctx context.Context) {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	s.jobsMu.Lock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.jobsMu.Unlock()

	rssActive := false
	anyActive := false
	for _, j := range jobs {
		if j.active() {
			anyActive = true
			if j.Name == JobRSS {
				rssActive = true
			}
		}
	}
	if rssActive {
		return
	}

	for _, j := range jobs {
		if j.ShouldRun != nil && !j.ShouldRun() {
			continue
		}
		if (j.Name == JobCleanup || j.Name == JobCollisionRecheck) && anyActive {
			continue
		}

		eligible, err := s.eligible(ctx, j)
		if err != nil {
			s.logger.Warn().Err(err).Str("job", string(j.Name)).Msg("failed to check job eligibility")
			continue
		}
		if !eligible {
			continue
		}

		j.mu.Lock()
		j.isActive = true
		cfg := j.configOverride
		j.mu.Unlock()
		// A job launched this tick counts as active for the CLEANUP /
		// COLLISION_RECHECK rule above.
		anyActive = true

		go func(job *Job, cfg map[string]any) {
			if err := s.runJob(ctx, job, cfg); err != nil {
				var fe *FatalError
				if errors.As(err, &fe) {
					s.logger.Error().Err(err).Str("job", string(job.Name)).Msg("fatal job error, terminating")
					select {
					case s.fatalCh <- err:
					default:
					}
					return
				}
				s.logger.Warn().Err(err).Str("job", string(job.Name)).Msg("job execution failed")
			}
		}(j, cfg)
	}
}

// eligible reports whether j should run this tick: now >= lastRun+cadence,
// or runAheadOfSchedule is set.
func (s *Scheduler) eligible(ctx context.Context, j *Job) (bool, error) {
	j.mu.Lock()
	ahead := j.runAheadOfSchedule
	j.mu.Unlock()
	if ahead {
		return true, nil
	}

	lastRunMillis, err := s.jobLog.LastRun(ctx, string(j.Name))
	if err != nil {
		if errors.Is(err, models.ErrJobLogNotFound) {
			return true, nil
		}
		return false, err
	}
	lastRun := time.UnixMilli(lastRunMillis)
	return !time.Now().Before(lastRun.Add(j.Cadence)), nil
}

// runJob runs one job to completion, synchronously within its own
// goroutine, and reconciles isActive/runAheadOfSchedule/configOverride/
// delayNextRun and persisted last_run on the way out.
func (s *Scheduler) runJob(ctx context.Context, j *Job, cfg map[string]any) error {
	start := time.Now()
	runErr := j.Executor(ctx, cfg)

	j.mu.Lock()
	j.isActive = false
	j.runAheadOfSchedule = false
	j.configOverride = nil
	delay := j.delayNextRun
	j.delayNextRun = false
	j.mu.Unlock()

	if runErr != nil {
		return runErr
	}

	if delay {
		if err := s.jobLog.SetLastRun(ctx, string(j.Name), start.Add(j.Cadence)); err != nil {
			return err
		}
		s.logger.Info().Str("job", string(j.Name)).Time("nextRun", start.Add(2*j.Cadence)).Msg("job completed, next run delayed")
		return nil
	}

	if err := s.jobLog.Touch(ctx, string(j.Name)); err != nil {
		return err
	}
	s.logger.Info().Str("job", string(j.Name)).Dur("took", time.Since(start)).Time("nextRun", start.Add(j.Cadence)).Msg("job completed")
	return nil
}
