// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package sync reads watch history from Plex Media Server.

# Components

  - PlexClient: HTTP client for /status/sessions/history/all,
    /library/metadata/{ratingKey} and /accounts, with rate limiting,
    HTTP 429 retries and a circuit breaker
  - HistoryFetcher: pages through history 250 records at a time, newest first
  - DurationEnricher: backfills missing durations with a bounded errgroup
  - Manager: gocron-scheduled re-sync of a Syncer (the history store)

# Pagination

	fetcher := sync.NewHistoryFetcher(client, sync.WithMaxPages(2000))
	sessions, err := fetcher.FetchHistory(ctx, models.FetchOptions{SinceYear: 2025}, progress)

Paging stops on an empty page, on a page that repeats the previous page's
first history key, or after the page that crosses into the year before
SinceYear. Errors abort the fetch.

# Errors

	ErrInvalidRequest  request could not be built
	*ServerError       non-success status or unreachable server (errors.Is ErrServer)
	ErrDecoding        response body not decodable
	ErrNoSelection     no server URL or token configured
	ErrPageLimit       pagination ceiling reached

ErrorKind maps an error to the label used in metrics and API error details.

# Progress

Fetcher and enricher report models.Progress on an optional channel. Sends
never block; a full channel drops the report.
*/
package sync
