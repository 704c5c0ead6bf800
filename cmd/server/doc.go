// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package main is the entry point for the Rewind server.

Rewind reads the complete watch history of a Plex Media Server, backfills
missing durations, and serves per-title and per-user statistics plus a
yearly "rewind" summary over a JSON API.

# Supervision

	RootSupervisor ("rewind")
	├── SyncSupervisor ("sync-layer")
	│   ├── WebSocket Hub
	│   ├── Sync progress relay
	│   └── Sync Manager (gocron re-sync)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Startup order:

 1. Configuration: koanf with defaults, optional config.yaml, environment
 2. Logging: zerolog
 3. Pipeline: cache backend, Plex client, fetcher, enricher, history store
 4. WebSocket hub and relay
 5. Router and HTTP server
 6. Supervisor tree until SIGINT or SIGTERM

# Example

	export PLEX_URL=http://localhost:32400
	export PLEX_TOKEN=your-plex-token
	export PLEX_SINCE_YEAR=2025
	./rewind

Without PLEX_URL and PLEX_TOKEN the server still starts; syncs fail with a
no-selection error and /api/v1/health/ready stays 503.
*/
package main
