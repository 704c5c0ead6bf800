// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"github.com/samber/lo"

	"github.com/tomtom215/rewind/internal/models"
)

// TopQuery describes one top-media request.
type TopQuery struct {
	Window          TimeWindow
	AccountID       int64
	MediaType       string
	Sort            SortOption
	Limit           int // 0 = no limit
	IncludeSessions bool
}

// TopMedia filters, groups and ranks sessions.
func TopMedia(sessions []models.WatchSession, q TopQuery, clock Clock) []models.MediaStat {
	f := NewFilter(q.Window, q.AccountID, q.MediaType, clock)

	groups := lo.Filter(Group(f.Apply(sessions)), func(stat models.MediaStat, _ int) bool {
		return f.MatchMedia(&stat)
	})

	top := Rank(groups, q.Sort).Top(q.Limit)
	if q.IncludeSessions {
		return top
	}
	return WithoutSessions(top)
}
