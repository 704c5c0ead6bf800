// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package config loads Rewind configuration with koanf.

# Configuration Sources

Values are layered, later layers winning:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml, /etc/rewind/config.yaml
  - Environment variables mapped through envMappings

# Environment Variables

Plex:
  - PLEX_URL: Plex server base URL
  - PLEX_TOKEN: X-Plex-Token
  - PLEX_TIMEOUT: per-request timeout (default: 30s)
  - PLEX_REQUESTS_PER_SECOND, PLEX_RATE_BURST: request pacing (default: 10/10)
  - PLEX_ACCOUNT_ID: restrict history to one account (default: 0, all)
  - PLEX_SINCE_YEAR: stop paging before this year (default: 0, no limit)

Sync:
  - SYNC_INTERVAL: scheduled re-sync interval, 0 disables (default: 6h)
  - SYNC_ON_STARTUP: sync once at boot (default: true)
  - ENRICH_CONCURRENCY: duration lookups in flight (default: 8)
  - SYNC_MAX_PAGES: pagination ceiling (default: 2000)
  - STATS_TIMEZONE: zone for week/month/year windows (default: local)

Cache:
  - CACHE_TYPE: memory or redis (default: memory)
  - REDIS_ADDR, REDIS_DB: redis endpoint
  - CACHE_TTL: duration cache TTL (default: 168h)

Server and security:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:3858)
  - HTTP_TIMEOUT, SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Validation errors name the environment variable to fix.
*/
package config
