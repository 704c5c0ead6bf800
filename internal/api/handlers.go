// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"context"
	"time"

	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
	ws "github.com/tomtom215/rewind/internal/websocket"
)

// HistoryStore is the part of history.Store the handlers use.
type HistoryStore interface {
	Sync(ctx context.Context, opts models.FetchOptions) error
	Status() history.Status
	HasSynced() bool
	HistoryForMedia(ctx context.Context, ratingKey, mediaType, grandparentRatingKey string) ([]models.WatchSession, error)
	HistoryForUser(accountID int64) []models.WatchSession
	TopMedia(q stats.TopQuery) []models.MediaStat
	Users(ctx context.Context, window stats.TimeWindow, by stats.SortOption) []models.UserStat
	Rewind(ctx context.Context, year int, accountID int64) models.RewindReport
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_health.go: liveness and readiness probes
//   - handlers_sync.go: sync trigger and status
//   - handlers_stats.go: top media, per-user breakdown, rewind
//   - handlers_history.go: raw session history by media or account
//   - handlers_ws.go: WebSocket progress stream
type Handler struct {
	store     HistoryStore
	wsHub     *ws.Hub
	config    *config.Config
	defaults  models.FetchOptions
	startTime time.Time

	// baseCtx outlives requests; background syncs started by POST /sync run
	// under it so they stop on shutdown rather than when the request ends.
	baseCtx context.Context
}

// NewHandler creates an API handler over the history store.
//
// wsHub may be nil, in which case /api/v1/ws answers 503.
func NewHandler(store HistoryStore, wsHub *ws.Hub, cfg *config.Config) *Handler {
	h := &Handler{
		store:     store,
		wsHub:     wsHub,
		config:    cfg,
		startTime: time.Now(),
		baseCtx:   context.Background(),
	}
	if cfg != nil {
		h.defaults = models.FetchOptions{
			SinceYear: cfg.Plex.SinceYear,
			AccountID: cfg.Plex.AccountID,
		}
	}
	return h
}

// SetBaseContext sets the context background syncs run under. The HTTP
// service calls it with its supervisor context before serving.
func (h *Handler) SetBaseContext(ctx context.Context) {
	h.baseCtx = ctx
}
