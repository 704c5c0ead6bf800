// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"net/http"

	"github.com/tomtom215/rewind/internal/stats"
)

// TopMedia ranks grouped watch history.
//
// Query: window (week|month|year|allTime), user (account id), sort
// (plays|watchTime), type (movie|show), limit (0 = all), sessions (include
// source sessions).
func (h *Handler) TopMedia(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseTopRequest(r)
	if !p.decode(rw, &req) {
		return
	}

	top := h.store.TopMedia(req.query())
	rw.SuccessList(top, len(top))
}

// Users returns plays and watch time per account.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseUsersRequest(r)
	if !p.decode(rw, &req) {
		return
	}
	window, _ := stats.ParseTimeWindow(req.Window)
	sort, _ := stats.ParseSortOption(req.Sort)

	users := h.store.Users(r.Context(), window, sort)
	rw.SuccessList(users, len(users))
}

// Rewind returns the yearly summary for all accounts or one (user).
func (h *Handler) Rewind(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, p := parseRewindRequest(r)
	if !p.decode(rw, &req) {
		return
	}

	rw.Success(h.store.Rewind(r.Context(), req.Year, req.User))
}
