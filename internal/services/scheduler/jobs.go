// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler

import "time"

const (
	defaultUpdateIndexerCapsCadence = 24 * time.Hour
	defaultInjectCadence            = time.Hour
	defaultCleanupCadence           = 24 * time.Hour
	defaultCollisionRecheckCadence  = time.Hour
)

// NewUpdateIndexerCapsJob refreshes torznab capability caches once a day.
func NewUpdateIndexerCapsJob(exec Executor) *Job {
	return &Job{Name: JobUpdateIndexerCaps, Cadence: defaultUpdateIndexerCapsCadence, Executor: exec}
}

// NewInjectJob flushes the injection queue hourly, but only when the
// configured post-snatch action is actually INJECT.
func NewInjectJob(exec Executor, actionIsInject func() bool) *Job {
	return &Job{Name: JobInject, Cadence: defaultInjectCadence, Executor: exec, ShouldRun: actionIsInject}
}

// NewCleanupJob removes orphaned cached torrent files once a day (see
// CleanupExecutor).
func NewCleanupJob(exec Executor) *Job {
	return &Job{Name: JobCleanup, Cadence: defaultCleanupCadence, Executor: exec}
}

// NewCollisionRecheckJob re-evaluates recorded collisions hourly, but only
// when the operator has enabled reading state from managed torrent clients.
func NewCollisionRecheckJob(exec Executor, useClientTorrents func() bool) *Job {
	return &Job{Name: JobCollisionRecheck, Cadence: defaultCollisionRecheckCadence, Executor: exec, ShouldRun: useClientTorrents}
}

// NewRSSJob polls indexer RSS feeds at an operator-configured cadence; a
// zero cadence disables the job (shouldRun always false).
func NewRSSJob(exec Executor, cadence time.Duration) *Job {
	return &Job{Name: JobRSS, Cadence: cadence, Executor: exec, ShouldRun: func() bool { return cadence > 0 }}
}

// NewSearchJob runs a bulk search sweep at an operator-configured cadence;
// a zero cadence disables the job.
func NewSearchJob(exec Executor, cadence time.Duration) *Job {
	return &Job{Name: JobSearch, Cadence: cadence, Executor: exec, ShouldRun: func() bool { return cadence > 0 }}
}
