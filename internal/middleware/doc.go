// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: per-request id in the X-Request-ID header and logging context
  - PrometheusMetrics: request count and latency labelled by chi route pattern

Both follow the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels by route pattern, so /api/v1/stats/rewind/2025 and
/api/v1/stats/rewind/2024 share the series /api/v1/stats/rewind/{year}.
*/
package middleware
