// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package cache

import (
	"context"

	"github.com/tomtom215/rewind/internal/models"
)

// Cache key prefixes.
const (
	DurationPrefix = "rewind-duration-"
	AccountsPrefix = "rewind-accounts-"
)

// DurationCache remembers item durations (milliseconds) by server and rating
// key so that re-syncs skip metadata lookups for items already seen. Rating
// keys are only unique within one server. Only positive durations are stored.
type DurationCache struct {
	c *PrefixedCache[int64]
}

// NewDurationCache creates a duration cache on backend.
func NewDurationCache(backend *Backend) *DurationCache {
	return &DurationCache{c: NewPrefixedCache[int64](backend, "durations", DurationPrefix)}
}

// Get returns the cached duration for ratingKey on server.
func (d *DurationCache) Get(ctx context.Context, server, ratingKey string) (int64, bool) {
	v, ok := d.c.Get(ctx, durationKey(server, ratingKey))
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Set stores a positive duration. Zero and negative values are ignored.
func (d *DurationCache) Set(ctx context.Context, server, ratingKey string, durationMs int64) error {
	if durationMs <= 0 || ratingKey == "" {
		return nil
	}
	return d.c.Set(ctx, durationKey(server, ratingKey), durationMs)
}

func durationKey(server, ratingKey string) string {
	return server + "|" + ratingKey
}

// AccountCache holds the account list of a server keyed by server URL.
type AccountCache struct {
	c *PrefixedCache[[]models.Account]
}

// NewAccountCache creates an account cache on backend.
func NewAccountCache(backend *Backend) *AccountCache {
	return &AccountCache{c: NewPrefixedCache[[]models.Account](backend, "accounts", AccountsPrefix)}
}

// Get returns the cached accounts for server.
func (a *AccountCache) Get(ctx context.Context, server string) ([]models.Account, bool) {
	return a.c.Get(ctx, server)
}

// Set stores the accounts for server.
func (a *AccountCache) Set(ctx context.Context, server string, accounts []models.Account) error {
	return a.c.Set(ctx, server, accounts)
}
