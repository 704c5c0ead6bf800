// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Plex     PlexConfig     `koanf:"plex"`
	Sync     SyncConfig     `koanf:"sync"`
	Cache    CacheConfig    `koanf:"cache"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// PlexConfig holds the Plex connection and request pacing settings.
// An empty URL or token is allowed at load time: history reads then fail
// with a no-selection error until a server is configured.
type PlexConfig struct {
	URL               string        `koanf:"url"`
	Token             string        `koanf:"token"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	RateBurst         int           `koanf:"rate_burst"`

	// AccountID restricts history to one Plex account. 0 means all accounts.
	AccountID int64 `koanf:"account_id"`

	// SinceYear stops pagination once a page reaches entries viewed before
	// January 1 of this year. 0 means no limit.
	SinceYear int `koanf:"since_year"`
}

// HasConnection reports whether both URL and token are set.
func (p *PlexConfig) HasConnection() bool {
	return p.URL != "" && p.Token != ""
}

// SyncConfig controls scheduled history synchronization and enrichment.
type SyncConfig struct {
	// Interval between scheduled syncs. 0 disables the schedule.
	Interval          time.Duration `koanf:"interval"`
	OnStartup         bool          `koanf:"on_startup"`
	EnrichConcurrency int           `koanf:"enrich_concurrency"`
	MaxPages          int           `koanf:"max_pages"`

	// Timezone is the IANA zone used for week/month/year windows.
	Timezone string `koanf:"timezone"`
}

// Location resolves Timezone, falling back to the local zone when empty.
func (s *SyncConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// CacheConfig selects the duration cache backend.
type CacheConfig struct {
	Type      string        `koanf:"type"` // memory or redis
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db"`
	TTL       time.Duration `koanf:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings, passed to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
