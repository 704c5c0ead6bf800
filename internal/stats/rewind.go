// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/rewind/internal/models"
)

// RewindTopN is the length of each top list in a rewind report.
const RewindTopN = 5

// RewindOptions selects the year and viewer of a rewind report.
type RewindOptions struct {
	Year      int
	AccountID int64
	Username  string
	Location  *time.Location
	Now       time.Time
}

// BuildRewind summarizes one calendar year of history. Only sessions with a
// timestamp inside the year (in Location) count.
func BuildRewind(sessions []models.WatchSession, opts RewindOptions) models.RewindReport {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(opts.Year, time.January, 1, 0, 0, 0, 0, loc).Unix()
	end := time.Date(opts.Year+1, time.January, 1, 0, 0, 0, 0, loc).Unix()

	inYear := lo.Filter(sessions, func(s models.WatchSession, _ int) bool {
		if opts.AccountID > 0 && s.AccountID != opts.AccountID {
			return false
		}
		return s.HasViewedAt() && s.ViewedAt >= start && s.ViewedAt < end
	})

	report := models.RewindReport{
		Year:        opts.Year,
		AccountID:   opts.AccountID,
		Username:    opts.Username,
		GeneratedAt: opts.Now,
		TotalPlays:  len(inYear),
	}

	days := make(map[int]struct{})
	var first, last *models.WatchSession
	for i := range inYear {
		s := &inYear[i]
		if s.HasDuration() {
			report.TotalWatchTimeSeconds += s.WatchSeconds()
		} else {
			report.UnknownDurationCount++
		}

		t, _ := s.ViewedTime(loc)
		report.PlaysByMonth[t.Month()-1]++
		report.PlaysByWeekday[t.Weekday()]++
		report.PlaysByHour[t.Hour()]++
		days[t.YearDay()] = struct{}{}

		if first == nil || s.ViewedAt < first.ViewedAt {
			first = s
		}
		if last == nil || s.ViewedAt > last.ViewedAt {
			last = s
		}
	}

	report.DaysActive = len(days)
	report.LongestStreakDays = longestStreak(days)
	if report.TotalPlays > 0 {
		report.PeakMonth = time.Month(peakIndex(report.PlaysByMonth[:]) + 1).String()
		report.PeakWeekday = time.Weekday(peakIndex(report.PlaysByWeekday[:])).String()
		report.PeakHour = peakIndex(report.PlaysByHour[:])
		report.FirstWatch = rewindWatch(first, loc)
		report.LastWatch = rewindWatch(last, loc)
	}

	groups := Group(inYear)
	report.UniqueTitles = len(groups)
	movies := lo.Filter(groups, func(g models.MediaStat, _ int) bool { return g.MediaType == models.TypeMovie })
	shows := lo.Filter(groups, func(g models.MediaStat, _ int) bool { return g.MediaType == models.TypeShow })

	report.TopMoviesByPlays = rewindRanks(Rank(movies, SortPlays).Top(RewindTopN))
	report.TopMoviesByWatchTime = rewindRanks(Rank(movies, SortWatchTime).Top(RewindTopN))
	report.TopShowsByPlays = rewindRanks(Rank(shows, SortPlays).Top(RewindTopN))
	report.TopShowsByWatchTime = rewindRanks(Rank(shows, SortWatchTime).Top(RewindTopN))

	return report
}

// longestStreak counts the longest run of consecutive days of the year.
func longestStreak(days map[int]struct{}) int {
	var best int
	for d := range days {
		if _, ok := days[d-1]; ok {
			continue
		}
		n := 1
		for {
			if _, ok := days[d+n]; !ok {
				break
			}
			n++
		}
		best = max(best, n)
	}
	return best
}

// peakIndex returns the first index holding the maximum count.
func peakIndex(counts []int) int {
	var at int
	for i, c := range counts {
		if c > counts[at] {
			at = i
		}
	}
	return at
}

func rewindWatch(s *models.WatchSession, loc *time.Location) *models.RewindWatch {
	t, _ := s.ViewedTime(loc)
	title := s.Title
	if s.Type == models.TypeEpisode && s.GrandparentTitle != "" {
		title = s.GrandparentTitle + " - " + s.Title
	}
	return &models.RewindWatch{Title: title, Type: s.Type, ViewedAt: t}
}

func rewindRanks(stats []models.MediaStat) []models.RewindRank {
	return lo.Map(stats, func(s models.MediaStat, i int) models.RewindRank {
		return models.RewindRank{
			Rank:                  i + 1,
			ID:                    s.ID,
			Title:                 s.Title,
			MediaType:             s.MediaType,
			Thumb:                 s.Thumb,
			ViewCount:             s.ViewCount,
			TotalWatchTimeSeconds: s.TotalWatchTimeSeconds,
		}
	})
}
