// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validatePlex validates the Plex section. URL and token are optional; when
// set they must be well formed.
func (c *Config) validatePlex() error {
	if c.Plex.URL != "" {
		if err := validateHTTPURL(c.Plex.URL, "PLEX_URL"); err != nil {
			return fmt.Errorf("PLEX_URL is invalid: %w", err)
		}
	}
	if c.Plex.Token != "" && len(c.Plex.Token) < 20 {
		return fmt.Errorf("PLEX_TOKEN appears invalid (too short, expected 20+ characters)")
	}
	if c.Plex.Timeout <= 0 {
		return fmt.Errorf("PLEX_TIMEOUT must be positive")
	}
	if c.Plex.RequestsPerSecond <= 0 {
		return fmt.Errorf("PLEX_REQUESTS_PER_SECOND must be positive")
	}
	if c.Plex.RateBurst < 1 {
		return fmt.Errorf("PLEX_RATE_BURST must be at least 1")
	}
	if c.Plex.AccountID < 0 {
		return fmt.Errorf("PLEX_ACCOUNT_ID must not be negative")
	}
	if c.Plex.SinceYear != 0 && (c.Plex.SinceYear < 1970 || c.Plex.SinceYear > 9999) {
		return fmt.Errorf("PLEX_SINCE_YEAR must be 0 or between 1970 and 9999")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}
	if c.Sync.Interval > 0 && c.Sync.Interval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m or 0 to disable")
	}
	if c.Sync.EnrichConcurrency < 1 || c.Sync.EnrichConcurrency > 64 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be between 1 and 64")
	}
	if c.Sync.MaxPages < 1 {
		return fmt.Errorf("SYNC_MAX_PAGES must be at least 1")
	}
	if _, err := c.Sync.Location(); err != nil {
		return fmt.Errorf("STATS_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Type {
	case "memory":
	case "redis":
		if err := validateHostPort(c.Cache.RedisAddr, "REDIS_ADDR"); err != nil {
			return fmt.Errorf("REDIS_ADDR is invalid: %w", err)
		}
	default:
		return fmt.Errorf("CACHE_TYPE must be memory or redis, got: %s", c.Cache.Type)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must contain at least one origin")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

// ShouldWarnAboutCORS reports whether CORS allows every origin.
func (c *Config) ShouldWarnAboutCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
