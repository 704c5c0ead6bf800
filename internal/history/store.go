// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package history

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/metrics"
	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
	plexsync "github.com/tomtom215/rewind/internal/sync"
)

// Fetcher reads the full watch history.
type Fetcher interface {
	FetchHistory(ctx context.Context, opts models.FetchOptions, progress chan<- models.Progress) ([]models.WatchSession, error)
}

// Enricher backfills missing durations.
type Enricher interface {
	Enrich(ctx context.Context, sessions []models.WatchSession, progress chan<- models.Progress) ([]models.WatchSession, error)
}

// AccountSource lists the server's accounts.
type AccountSource interface {
	Accounts(ctx context.Context) ([]models.Account, error)
}

// State is the sync state of a Store.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateFailed  State = "failed"
)

// snapshot is an immutable committed history.
type snapshot struct {
	sessions []models.WatchSession
	syncedAt time.Time
	opts     models.FetchOptions
}

// Status describes the store for API and CLI consumers.
type Status struct {
	State      State            `json:"state"`
	IsSynced   bool             `json:"is_synced"`
	LastSyncAt *time.Time       `json:"last_sync_at,omitempty"`
	Sessions   int              `json:"sessions"`
	SinceYear  int              `json:"since_year,omitempty"`
	SyncID     string           `json:"sync_id,omitempty"`
	Progress   *models.Progress `json:"progress,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
	ErrorKind  string           `json:"error_kind,omitempty"`
}

// Store holds the committed watch history and runs syncs.
//
// Readers load the committed snapshot atomically and never observe a
// partially synced history. Only one sync runs at a time: starting a new
// one cancels the running one and waits for it to exit.
type Store struct {
	fetcher  Fetcher
	enricher Enricher
	accounts AccountSource
	clock    stats.Clock
	loc      *time.Location
	defaults models.FetchOptions

	snap atomic.Pointer[snapshot]

	mu           sync.Mutex
	state        State
	isSynced     bool
	everSynced   bool
	lastErr      error
	lastProgress *models.Progress
	syncID       string
	cancel       context.CancelFunc
	done         chan struct{}

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Option customizes a Store.
type Option func(*Store)

// WithAccounts enables account name resolution.
func WithAccounts(src AccountSource) Option {
	return func(s *Store) { s.accounts = src }
}

// WithClock sets the clock used for time windows and timestamps.
func WithClock(c stats.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone for calendar windows and rewind years.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDefaultOptions sets the fetch options used for implicit syncs.
func WithDefaultOptions(opts models.FetchOptions) Option {
	return func(s *Store) { s.defaults = opts }
}

// New creates an empty, idle store. enricher may be nil.
func New(fetcher Fetcher, enricher Enricher, opts ...Option) *Store {
	s := &Store{
		fetcher:  fetcher,
		enricher: enricher,
		loc:      time.Local,
		state:    StateIdle,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = stats.SystemClock(s.loc)
	}
	s.snap.Store(&snapshot{})
	return s
}

// Sync fetches and enriches the full history and commits it.
//
// A running sync is cancelled first. On failure the previously committed
// history stays readable and the state becomes failed. If the sync itself
// is cancelled nothing is committed and the state returns to what it was
// before. The caller's context error is returned, or context.Canceled when
// a newer sync took over.
func (s *Store) Sync(ctx context.Context, opts models.FetchOptions) error {
	return s.sync(ctx, opts, true)
}

// syncOnce runs the first sync of the store. A sync already in flight is
// waited for instead of cancelled, and nothing runs once a sync has
// completed.
func (s *Store) syncOnce(ctx context.Context) error {
	return s.sync(ctx, s.defaults, false)
}

func (s *Store) sync(ctx context.Context, opts models.FetchOptions, supersede bool) error {
	runCtx, prevState, prevSynced, done, err := s.begin(ctx, supersede)
	if err != nil || done == nil {
		return err
	}

	syncID := logging.SyncIDFromContext(ctx)
	if syncID == "" {
		syncID = logging.GenerateSyncID()
		runCtx = logging.ContextWithSyncID(runCtx, syncID)
	}
	s.mu.Lock()
	s.syncID = syncID
	s.mu.Unlock()

	log := logging.Ctx(runCtx)
	log.Info().Int("since_year", opts.SinceYear).Int64("account_id", opts.AccountID).Msg("history sync started")
	s.publish(Event{Type: EventSyncStarted, SyncID: syncID})
	metrics.SyncInProgress.Set(1)

	start := time.Now()
	sessions, runErr := s.run(runCtx, syncID, opts)
	metrics.SyncInProgress.Set(0)

	s.mu.Lock()
	defer func() {
		s.cancel()
		s.cancel = nil
		s.done = nil
		close(done)
		s.mu.Unlock()
	}()

	if runCtx.Err() != nil {
		s.state = prevState
		s.isSynced = prevSynced
		log.Info().Msg("history sync cancelled")
		s.publish(Event{Type: EventSyncCancelled, SyncID: syncID})
		metrics.RecordSyncOperation(time.Since(start), 0, "canceled")
		if err := ctx.Err(); err != nil {
			return err
		}
		return context.Canceled
	}

	if runErr != nil {
		kind := plexsync.ErrorKind(runErr)
		s.state = StateFailed
		s.lastErr = runErr
		s.isSynced = prevSynced
		log.Error().Err(runErr).Str("error_type", kind).Msg("history sync failed")
		s.publish(Event{Type: EventSyncFailed, SyncID: syncID, Error: runErr.Error(), ErrorKind: kind})
		metrics.RecordSyncOperation(time.Since(start), 0, kind)
		return runErr
	}

	s.snap.Store(&snapshot{sessions: sessions, syncedAt: s.clock.Now(), opts: opts})
	s.lastErr = nil
	s.everSynced = true
	if len(sessions) > 0 {
		s.state = StateSynced
		s.isSynced = true
	} else {
		s.state = StateIdle
		s.isSynced = false
	}
	log.Info().Int("sessions", len(sessions)).Dur("duration", time.Since(start)).Msg("history sync completed")
	s.publish(Event{Type: EventSyncCompleted, SyncID: syncID, Sessions: len(sessions)})
	metrics.RecordSyncOperation(time.Since(start), len(sessions), "")
	return nil
}

// begin waits out any running sync, cancelling it first when supersede is
// set, then claims the store. Without supersede a nil done channel and nil
// error mean a sync has already completed and there is nothing to run.
func (s *Store) begin(ctx context.Context, supersede bool) (runCtx context.Context, prevState State, prevSynced bool, done chan struct{}, err error) {
	s.mu.Lock()
	for {
		if !supersede && s.everSynced {
			s.mu.Unlock()
			return nil, "", false, nil, nil
		}
		if s.done == nil {
			break
		}
		if supersede {
			s.cancel()
		}
		wait := s.done
		s.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, "", false, nil, ctx.Err()
		}
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	done = make(chan struct{})
	prevState, prevSynced = s.state, s.isSynced

	s.cancel = cancel
	s.done = done
	s.state = StateSyncing
	s.isSynced = false
	s.lastProgress = nil
	return runCtx, prevState, prevSynced, done, nil
}

// run fetches and enriches, relaying progress to subscribers.
func (s *Store) run(ctx context.Context, syncID string, opts models.FetchOptions) ([]models.WatchSession, error) {
	progress := make(chan models.Progress, 64)
	relayed := make(chan struct{})
	go func() {
		defer close(relayed)
		for p := range progress {
			s.mu.Lock()
			s.lastProgress = &p
			s.mu.Unlock()
			s.publish(Event{Type: EventSyncProgress, SyncID: syncID, Progress: &p})
		}
	}()
	defer func() {
		close(progress)
		<-relayed
	}()

	sessions, err := s.fetcher.FetchHistory(ctx, opts, progress)
	if err != nil {
		return nil, err
	}
	if s.enricher == nil {
		return sessions, nil
	}
	return s.enricher.Enrich(ctx, sessions, progress)
}

// Status reports the current sync state.
func (s *Store) Status() Status {
	snap := s.snap.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:     s.state,
		IsSynced:  s.isSynced,
		Sessions:  len(snap.sessions),
		SinceYear: snap.opts.SinceYear,
		SyncID:    s.syncID,
		Progress:  s.lastProgress,
	}
	if !snap.syncedAt.IsZero() {
		t := snap.syncedAt
		st.LastSyncAt = &t
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
		st.ErrorKind = plexsync.ErrorKind(s.lastErr)
	}
	return st
}

// HasSynced reports whether any sync has completed.
func (s *Store) HasSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.everSynced
}

// Sessions returns the committed history, newest first. The slice is shared
// and must not be modified.
func (s *Store) Sessions() []models.WatchSession {
	return s.snap.Load().sessions
}

// HistoryForMedia returns the sessions of one movie or one series. The store
// syncs first when it has never completed a sync; a sync already running is
// waited for, not replaced.
//
// For movies ratingKey is the movie. For shows and episodes the series is
// grandparentRatingKey when given, otherwise ratingKey.
func (s *Store) HistoryForMedia(ctx context.Context, ratingKey, mediaType, grandparentRatingKey string) ([]models.WatchSession, error) {
	if !s.HasSynced() {
		if err := s.syncOnce(ctx); err != nil {
			return nil, err
		}
	}

	sessions := s.Sessions()
	switch mediaType {
	case models.TypeMovie:
		return lo.Filter(sessions, func(w models.WatchSession, _ int) bool {
			return w.Type == models.TypeMovie && w.RatingKey == ratingKey
		}), nil
	case models.TypeShow, models.TypeEpisode:
		series := grandparentRatingKey
		if series == "" {
			series = ratingKey
		}
		return lo.Filter(sessions, func(w models.WatchSession, _ int) bool {
			return w.Type == models.TypeEpisode && w.SeriesID() == series
		}), nil
	default:
		return nil, plexsync.ErrInvalidRequest
	}
}

// HistoryForUser returns the sessions of one account, newest first.
// Account 0 is the unknown user and always yields nothing.
func (s *Store) HistoryForUser(accountID int64) []models.WatchSession {
	if accountID == 0 {
		return []models.WatchSession{}
	}
	return lo.Filter(s.Sessions(), func(w models.WatchSession, _ int) bool {
		return w.AccountID == accountID
	})
}

// TopMedia ranks the committed history.
func (s *Store) TopMedia(q stats.TopQuery) []models.MediaStat {
	return stats.TopMedia(s.Sessions(), q, s.clock)
}

// Users returns the per-account breakdown for window. Account names are
// resolved when an AccountSource is configured; failures leave them empty.
func (s *Store) Users(ctx context.Context, window stats.TimeWindow, by stats.SortOption) []models.UserStat {
	f := stats.NewFilter(window, 0, "", s.clock)
	return stats.Users(s.Sessions(), f, by, s.accountNames(ctx))
}

// Rewind builds the yearly summary. accountID 0 covers all accounts.
// The report is marked incomplete when the committed history was fetched
// from a later year or for a different account.
func (s *Store) Rewind(ctx context.Context, year int, accountID int64) models.RewindReport {
	var username string
	if accountID > 0 {
		username = s.accountNames(ctx)[accountID]
	}
	snap := s.snap.Load()
	report := stats.BuildRewind(snap.sessions, stats.RewindOptions{
		Year:      year,
		AccountID: accountID,
		Username:  username,
		Location:  s.loc,
		Now:       s.clock.Now(),
	})
	report.SyncedSinceYear = snap.opts.SinceYear
	report.Complete = !snap.syncedAt.IsZero() &&
		(snap.opts.SinceYear == 0 || snap.opts.SinceYear <= year) &&
		(snap.opts.AccountID == 0 || snap.opts.AccountID == accountID)
	return report
}

func (s *Store) accountNames(ctx context.Context) map[int64]string {
	if s.accounts == nil {
		return nil
	}
	accounts, err := s.accounts.Accounts(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logging.Ctx(ctx).Warn().Err(err).Msg("account lookup failed, names omitted")
		}
		return nil
	}
	return stats.AccountNames(accounts)
}
