// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/rewind/internal/logging"
)

// ScheduledSyncer matches *sync.Manager: a Start/Stop scheduler that can
// report its next run.
type ScheduledSyncer interface {
	Start(ctx context.Context) error
	Stop() error
	NextRun() time.Time
}

// SyncService adapts the sync manager's Start/Stop lifecycle to suture's
// Serve pattern.
type SyncService struct {
	manager ScheduledSyncer
	name    string
}

// NewSyncService creates a new sync service wrapper.
//
//	manager := plexsync.NewManager(store, cfg)
//	tree.AddSyncService(services.NewSyncService(manager))
func NewSyncService(manager ScheduledSyncer) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "sync-manager",
	}
}

// Serve starts the manager, blocks until ctx is cancelled, then stops it.
// A Start failure is returned at once so suture retries with backoff.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	if next := s.manager.NextRun(); !next.IsZero() {
		logging.Debug().Time("next_run", next).Msg("History sync scheduled")
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *SyncService) String() string {
	return s.name
}
