// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/rewind/internal/history"
)

// liveness is the body of GET /api/v1/health/live.
type liveness struct {
	Alive  bool    `json:"alive"`
	Uptime float64 `json:"uptime_seconds"`
}

// readiness is the body of GET /api/v1/health/ready.
type readiness struct {
	Ready          bool          `json:"ready"`
	State          history.State `json:"state"`
	PlexConfigured bool          `json:"plex_configured"`
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(liveness{
		Alive:  true,
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready means at least one sync has completed, so statistics reflect the
// server's history. Returns 503 until then.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	body := readiness{
		Ready:          h.store.HasSynced(),
		State:          h.store.Status().State,
		PlexConfigured: h.config != nil && h.config.Plex.HasConnection(),
	}

	status := http.StatusOK
	if !body.Ready {
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).StatusWithData(status, body)
}
