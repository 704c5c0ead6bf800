// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package models defines the data passed between the sync, stats and API layers.

# Types

  - WatchSession: one history entry as decoded from Plex
  - MediaStat: per-title aggregate (a movie or a whole show)
  - UserStat: per-account aggregate
  - RewindReport: one account's or the whole server's year in review
  - FetchOptions: since-year and account filters for a history read
  - Progress: sync progress reports on a non-blocking channel
  - FlexValue: a JSON scalar Plex sends as either string or number

# Absent values

Zero means absent throughout: ViewedAt 0 has no timestamp, Duration 0 is
unknown, AccountID 0 is an unknown user. Aggregates count unknown durations
in UnknownDurationCount rather than guessing.

# Grouping

	id, mediaType, ok := session.GroupKey()

Movies group by rating key. Episodes group by the show: grandparent rating
key, else the last segment of the grandparent key. Sessions without a usable
key are skipped by aggregation.
*/
package models
