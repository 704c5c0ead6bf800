// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package stats turns a watch history snapshot into rankings.

The pipeline is pure and deterministic:

	Filter (time window, account) -> Group (movie or series) -> Rank (plays or watch time)

Group partitions sessions: every movie session with a rating key and every
episode session with a resolvable series id lands in exactly one MediaStat.
Missing durations count as zero seconds and are reported separately in
UnknownDurationCount.

Rank is a stable sort. Ranking.Top(n) is always a prefix of Ranking.All().

Users and BuildRewind derive the per-account breakdown and the yearly
summary from the same building blocks.
*/
package stats
