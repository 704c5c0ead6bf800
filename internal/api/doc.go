// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package api serves watch statistics over HTTP with a chi router.

# Endpoints

	GET  /api/v1/health/live              liveness
	GET  /api/v1/health/ready             readiness: 200 once a sync has completed
	POST /api/v1/sync                     start a sync (wait, since_year, account_id)
	GET  /api/v1/sync/status              sync state, progress and last error
	GET  /api/v1/stats/top                ranked media (window, user, sort, type, limit, sessions)
	GET  /api/v1/stats/users              per-account plays and watch time (window, sort)
	GET  /api/v1/stats/rewind/{year}      yearly summary (user); complete=false when the
	                                      synced history does not reach back to year
	GET  /api/v1/history/media/{ratingKey} sessions of a movie or series (type, grandparent)
	GET  /api/v1/history/users/{accountID} sessions of one account
	GET  /api/v1/ws                       WebSocket progress stream
	GET  /metrics                         Prometheus

# Responses

Every JSON response uses one envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "SERVICE_UNAVAILABLE", "message": "..."}, "meta": {...}}

Sync errors map to status codes in writeSyncError. Query parameters are
parsed into request structs and checked with the validation package;
failures answer 400 VALIDATION_FAILED naming the parameter.

# Middleware

Request id, real IP, request logging, panic recovery, Prometheus metrics
and CORS apply globally. Rate limits are per route group via go-chi/httprate.
*/
package api
