// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/rewind/internal/logging"
)

// TriggerSync starts a history sync.
//
// By default the sync runs in the background and the handler answers 202
// with the store status. With wait=true the handler blocks until the sync
// ends and maps its error. Either way a sync already in flight is cancelled
// and replaced; a waiting caller whose sync is replaced gets 409.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseSyncRequest(r, h.defaults)
	if !p.decode(rw, &req) {
		return
	}
	opts := req.options()

	syncID := logging.GenerateSyncID()
	log := logging.Ctx(r.Context())
	log.Info().
		Str("sync_id", syncID).
		Bool("wait", req.Wait).
		Int("since_year", opts.SinceYear).
		Int64("account_id", opts.AccountID).
		Msg("Sync requested")

	if req.Wait {
		ctx := logging.ContextWithSyncID(r.Context(), syncID)
		if err := h.store.Sync(ctx, opts); err != nil {
			writeSyncError(rw, err)
			return
		}
		rw.Success(h.store.Status())
		return
	}

	ctx := logging.ContextWithSyncID(h.baseCtx, syncID)
	ctx = logging.ContextWithRequestID(ctx, logging.RequestIDFromContext(r.Context()))
	go func() {
		err := h.store.Sync(ctx, opts)
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Background sync failed")
		}
	}()

	rw.Accepted(map[string]string{"sync_id": syncID})
}

// SyncStatus reports the store's sync state, last error and progress.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.store.Status())
}
