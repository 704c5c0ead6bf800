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
	plexsync "github.com/tomtom215/rewind/internal/sync"
)

// errorDetails is attached to mapped sync errors so clients can branch on
// the kind without parsing messages.
type errorDetails struct {
	ErrorType  string `json:"error_type"`
	StatusCode int    `json:"status_code,omitempty"`
}

// writeSyncError maps a history or sync error onto the response envelope:
//
//	no server selected         503 SERVICE_UNAVAILABLE
//	invalid request            400 BAD_REQUEST
//	server/decoding/page limit 502 EXTERNAL_SERVICE_FAILED
//	superseded by newer sync   409 CONFLICT
//	deadline exceeded          504 TIMEOUT
func writeSyncError(rw *ResponseWriter, err error) {
	kind := plexsync.ErrorKind(err)

	switch {
	case errors.Is(err, context.Canceled):
		rw.Conflict("Sync was cancelled by a newer sync request")
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out waiting for the media server")
	case errors.Is(err, plexsync.ErrNoSelection):
		rw.ServiceUnavailable("No Plex server configured: set PLEX_URL and PLEX_TOKEN")
	case errors.Is(err, plexsync.ErrInvalidRequest):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeBadRequest, "Invalid request", errorDetails{ErrorType: kind})
	case errors.Is(err, plexsync.ErrServer), errors.Is(err, plexsync.ErrDecoding), errors.Is(err, plexsync.ErrPageLimit):
		details := errorDetails{ErrorType: kind}
		var serverErr *plexsync.ServerError
		if errors.As(err, &serverErr) {
			details.StatusCode = serverErr.StatusCode
		}
		rw.ExternalServiceError("plex", err, details)
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Unmapped sync error")
		rw.InternalError("Unexpected error")
	}
}
