// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package cache provides typed caches over gocache stores.

A Backend is either an in-process go-cache store or a Redis store, selected
by CACHE_TYPE. Typed views (PrefixedCache) JSON-encode values under a key
prefix so several caches can share one backend:

	backend := cache.NewBackend(&cfg.Cache)
	durations := cache.NewDurationCache(backend)

	if ms, ok := durations.Get(ctx, serverURL, ratingKey); ok {
	    // skip the metadata request
	}

Lookups never fail: a store error or a missing key is a miss. Hits and
misses are counted in rewind_cache_hits_total and rewind_cache_misses_total.
*/
package cache
