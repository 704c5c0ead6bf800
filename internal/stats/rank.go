// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tomtom215/rewind/internal/models"
)

// SortOption is the primary ranking key.
type SortOption string

const (
	SortPlays     SortOption = "plays"
	SortWatchTime SortOption = "watchTime"
)

// ParseSortOption accepts the sort names used by the API. Empty means plays.
func ParseSortOption(s string) (SortOption, error) {
	switch s {
	case "", string(SortPlays):
		return SortPlays, nil
	case string(SortWatchTime), "watch_time", "watchtime":
		return SortWatchTime, nil
	default:
		return "", fmt.Errorf("unknown sort %q (want plays or watchTime)", s)
	}
}

// Ranking is a sorted view over grouped statistics.
type Ranking struct {
	sort  SortOption
	items []models.MediaStat
}

// Rank sorts a copy of stats, highest first. Ties are broken by the most
// recent watch, with never-timestamped groups last; remaining ties keep
// input order.
func Rank(stats []models.MediaStat, by SortOption) *Ranking {
	items := slices.Clone(stats)
	slices.SortStableFunc(items, func(a, b models.MediaStat) int {
		return compareStats(&a, &b, by)
	})
	return &Ranking{sort: by, items: items}
}

func compareStats(a, b *models.MediaStat, by SortOption) int {
	var c int
	if by == SortWatchTime {
		c = cmp.Compare(b.TotalWatchTimeSeconds, a.TotalWatchTimeSeconds)
	} else {
		c = cmp.Compare(b.ViewCount, a.ViewCount)
	}
	if c != 0 {
		return c
	}
	return compareRecency(a.LastViewedAt, b.LastViewedAt)
}

// compareRecency orders newer timestamps first and missing (0) last.
func compareRecency(a, b int64) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	default:
		return cmp.Compare(b, a)
	}
}

// Sort returns the ranking's sort option.
func (r *Ranking) Sort() SortOption { return r.sort }

// Len returns the number of ranked groups.
func (r *Ranking) Len() int { return len(r.items) }

// All returns the full ranking.
func (r *Ranking) All() []models.MediaStat {
	return r.items
}

// Top returns the first n entries of All. n <= 0 returns everything.
func (r *Ranking) Top(n int) []models.MediaStat {
	if n <= 0 || n >= len(r.items) {
		return r.items
	}
	return r.items[:n]
}
