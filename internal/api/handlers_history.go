// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"net/http"
)

// MediaHistory returns every session of one movie (type=movie) or one series
// (type=show or episode, series from grandparent or the path key). The first
// call on a store that never synced triggers a sync.
func (h *Handler) MediaHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseMediaHistoryRequest(r)
	if !p.decode(rw, &req) {
		return
	}

	sessions, err := h.store.HistoryForMedia(r.Context(), req.RatingKey, req.Type, req.Grandparent)
	if err != nil {
		writeSyncError(rw, err)
		return
	}
	rw.SuccessList(sessions, len(sessions))
}

// UserHistory returns every session of one account, newest first.
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseUserHistoryRequest(r)
	if !p.decode(rw, &req) {
		return
	}

	sessions := h.store.HistoryForUser(req.AccountID)
	rw.SuccessList(sessions, len(sessions))
}
