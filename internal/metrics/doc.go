// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package metrics provides Prometheus metrics for Rewind.

Metrics are registered with promauto on the default registry and exposed at
/metrics:

	curl http://localhost:3858/metrics

# Available Metrics

History sync:
  - rewind_sync_duration_seconds, rewind_sync_sessions
  - rewind_sync_errors_total{error_type}
  - rewind_sync_last_success_timestamp, rewind_sync_in_progress
  - rewind_history_pages_fetched_total

Enrichment and caching:
  - rewind_enrich_requests_total{result}: cached, success, missing, failed
  - rewind_enrich_in_flight
  - rewind_cache_hits_total{cache}, rewind_cache_misses_total{cache}

Plex circuit breaker:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

API and WebSocket:
  - rewind_api_requests_total, rewind_api_request_duration_seconds
  - rewind_websocket_connections, rewind_websocket_messages_sent_total
  - rewind_progress_events_dropped_total
*/
package metrics
