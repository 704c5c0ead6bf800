// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/models"
)

// Syncer runs one full history sync.
type Syncer interface {
	Sync(ctx context.Context, opts models.FetchOptions) error
}

// Manager runs scheduled history syncs with gocron. The job runs in
// singleton reschedule mode so a slow sync never overlaps the next tick.
type Manager struct {
	syncer    Syncer
	interval  time.Duration
	onStartup bool
	opts      models.FetchOptions

	mu        gosync.Mutex
	running   bool
	scheduler gocron.Scheduler
	job       gocron.Job
	cancel    context.CancelFunc
}

// NewManager creates a sync manager from configuration.
func NewManager(syncer Syncer, cfg *config.Config) *Manager {
	return &Manager{
		syncer:    syncer,
		interval:  cfg.Sync.Interval,
		onStartup: cfg.Sync.OnStartup,
		opts: models.FetchOptions{
			SinceYear: cfg.Plex.SinceYear,
			AccountID: cfg.Plex.AccountID,
		},
	}
}

// Start creates the scheduler and registers the sync job. With a zero
// interval and OnStartup set, a single sync runs once.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("sync manager is already running")
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLogger(newSchedulerLogger()))
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	jobCtx, cancel := context.WithCancel(ctx)

	var jobDef gocron.JobDefinition
	var jobOpts []gocron.JobOption
	switch {
	case m.interval > 0:
		jobDef = gocron.DurationJob(m.interval)
		if m.onStartup {
			jobOpts = append(jobOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
	case m.onStartup:
		jobDef = gocron.OneTimeJob(gocron.OneTimeJobStartImmediately())
	}

	if jobDef != nil {
		jobOpts = append(jobOpts,
			gocron.WithName("history-sync"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		job, err := scheduler.NewJob(jobDef, gocron.NewTask(func() { m.runSync(jobCtx) }), jobOpts...)
		if err != nil {
			cancel()
			_ = scheduler.Shutdown()
			return fmt.Errorf("failed to schedule history sync: %w", err)
		}
		m.job = job
	}

	m.scheduler = scheduler
	m.cancel = cancel
	m.running = true
	scheduler.Start()

	logging.Info().
		Dur("interval", m.interval).
		Bool("on_startup", m.onStartup).
		Msg("Sync manager started")
	return nil
}

// Stop cancels a running scheduled sync and shuts the scheduler down.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false

	logging.Info().Msg("Stopping sync manager...")
	m.cancel()
	err := m.scheduler.Shutdown()
	m.job = nil
	logging.Info().Msg("Sync manager stopped")
	return err
}

// NextRun returns the next scheduled sync time, zero when unscheduled.
func (m *Manager) NextRun() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.job == nil {
		return time.Time{}
	}
	next, err := m.job.NextRun()
	if err != nil {
		return time.Time{}
	}
	return next
}

func (m *Manager) runSync(ctx context.Context) {
	syncID := logging.GenerateSyncID()
	ctx = logging.ContextWithSyncID(ctx, syncID)

	logging.Ctx(ctx).Info().Msg("Scheduled history sync starting")
	err := m.syncer.Sync(ctx, m.opts)
	switch {
	case err == nil:
		logging.Ctx(ctx).Info().Msg("Scheduled history sync completed")
	case errors.Is(err, context.Canceled):
		logging.Ctx(ctx).Debug().Msg("Scheduled history sync cancelled")
	case errors.Is(err, ErrNoSelection):
		logging.Ctx(ctx).Warn().Msg("Scheduled history sync skipped: PLEX_URL or PLEX_TOKEN not configured")
	default:
		logging.Ctx(ctx).Error().Err(err).Str("error_type", ErrorKind(err)).Msg("Scheduled history sync failed")
	}
}
