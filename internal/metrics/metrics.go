// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// History Sync Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rewind_sync_duration_seconds",
			Help:    "Duration of full history syncs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	SyncSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewind_sync_sessions",
			Help: "Number of watch sessions held by the last committed sync",
		},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewind_sync_errors_total",
			Help: "Total number of failed history syncs",
		},
		[]string{"error_type"}, // invalid_request, server_error, decoding_error, no_selection, page_limit, canceled, other
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewind_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync",
		},
	)

	SyncInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewind_sync_in_progress",
			Help: "1 while a history sync is running",
		},
	)

	HistoryPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewind_history_pages_fetched_total",
			Help: "Total number of history pages fetched from Plex",
		},
	)

	// Enrichment Metrics
	EnrichRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewind_enrich_requests_total",
			Help: "Total number of duration lookups by result",
		},
		[]string{"result"}, // cached, success, missing, failed
	)

	EnrichInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewind_enrich_in_flight",
			Help: "Current number of metadata lookups in flight",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewind_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewind_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Progress Event Metrics
	ProgressEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewind_progress_events_dropped_total",
			Help: "Progress events dropped because a subscriber was not keeping up",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewind_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rewind_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rewind_websocket_connections",
			Help: "Current number of WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewind_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)
)

// RecordSyncOperation records a completed sync. errorType is empty on success.
func RecordSyncOperation(duration time.Duration, sessions int, errorType string) {
	SyncDuration.Observe(duration.Seconds())
	if errorType != "" {
		SyncErrors.WithLabelValues(errorType).Inc()
		return
	}
	SyncSessions.Set(float64(sessions))
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEnrichResult counts one duration lookup outcome.
func RecordEnrichResult(result string) {
	EnrichRequests.WithLabelValues(result).Inc()
}

// RecordCacheLookup counts a cache hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
