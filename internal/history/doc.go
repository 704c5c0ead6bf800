// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package history owns the in-memory watch history.

A Store is built explicitly and passed to its consumers:

	store := history.New(fetcher, enricher,
		history.WithAccounts(directory),
		history.WithLocation(loc),
	)
	err := store.Sync(ctx, models.FetchOptions{SinceYear: 2025})

State machine:

	idle -> syncing -> synced | failed
	synced -> syncing, failed -> syncing

A failed sync keeps the previous history readable. A sync that finds no
history commits the empty result and returns to idle. Queries never change
state.

Progress is published as Events to every Subscribe channel. Publishing never
blocks; a subscriber that falls behind loses events.
*/
package history
