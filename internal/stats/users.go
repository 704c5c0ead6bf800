// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/tomtom215/rewind/internal/models"
)

// Users breaks filtered history down per account. Sessions without an
// account are skipped. names maps account ids to display names and may be
// nil. Rows are ranked like media: by the sort key, then most recent watch,
// then first appearance.
func Users(sessions []models.WatchSession, f Filter, by SortOption, names map[int64]string) []models.UserStat {
	known := lo.Filter(f.Apply(sessions), func(s models.WatchSession, _ int) bool {
		return s.AccountID != 0
	})

	byAccount := lo.GroupBy(known, func(s models.WatchSession) int64 { return s.AccountID })
	order := lo.Uniq(lo.Map(known, func(s models.WatchSession, _ int) int64 { return s.AccountID }))

	rows := make([]models.UserStat, 0, len(order))
	for _, id := range order {
		rows = append(rows, userStat(id, names[id], byAccount[id]))
	}

	slices.SortStableFunc(rows, func(a, b models.UserStat) int {
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
	})
	return rows
}

func userStat(accountID int64, name string, sessions []models.WatchSession) models.UserStat {
	row := models.UserStat{AccountID: accountID, Name: name}
	titles := make(map[string]struct{})
	for i := range sessions {
		s := &sessions[i]
		row.ViewCount++
		if s.HasDuration() {
			row.TotalWatchTimeSeconds += s.WatchSeconds()
		} else {
			row.UnknownDurationCount++
		}
		if s.ViewedAt > row.LastViewedAt {
			row.LastViewedAt = s.ViewedAt
		}
		if id, mediaType, ok := s.GroupKey(); ok {
			titles[mediaType+"\x00"+id] = struct{}{}
		}
	}
	row.UniqueTitles = len(titles)
	return row
}

// AccountNames indexes accounts by id.
func AccountNames(accounts []models.Account) map[int64]string {
	return lo.SliceToMap(accounts, func(a models.Account) (int64, string) {
		return a.ID, a.Name
	})
}
