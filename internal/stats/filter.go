// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/rewind/internal/models"
)

// TimeWindow selects how far back statistics reach.
type TimeWindow string

const (
	WindowWeek    TimeWindow = "week"
	WindowMonth   TimeWindow = "month"
	WindowYear    TimeWindow = "year"
	WindowAllTime TimeWindow = "allTime"
)

// ParseTimeWindow accepts the window names used by the API. Empty means allTime.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch s {
	case "", string(WindowAllTime), "all", "alltime", "all_time":
		return WindowAllTime, nil
	case string(WindowWeek), string(WindowMonth), string(WindowYear):
		return TimeWindow(s), nil
	default:
		return "", fmt.Errorf("unknown time window %q (want week, month, year or allTime)", s)
	}
}

// Start returns the inclusive lower bound of the window containing now, in
// now's location. ok is false for allTime.
func (w TimeWindow) Start(now time.Time) (start time.Time, ok bool) {
	y, m, d := now.Date()
	loc := now.Location()
	switch w {
	case WindowWeek:
		// ISO weeks start on Monday.
		offset := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc), true
	case WindowMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), true
	case WindowYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}

// Clock supplies the current time for window computation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Filter narrows sessions by time window, account and media type.
type Filter struct {
	Window    TimeWindow
	AccountID int64  // 0 = all accounts
	MediaType string // "" = movies and shows

	bounded bool
	cutoff  int64 // epoch seconds
}

// NewFilter fixes the window bounds against clock.
func NewFilter(window TimeWindow, accountID int64, mediaType string, clock Clock) Filter {
	f := Filter{Window: window, AccountID: accountID, MediaType: mediaType}
	if start, ok := window.Start(clock.Now()); ok {
		f.bounded = true
		f.cutoff = start.Unix()
	}
	return f
}

// Since returns the window's lower bound in epoch seconds. ok is false
// for allTime.
func (f Filter) Since() (cutoff int64, ok bool) {
	return f.cutoff, f.bounded
}

// Match reports whether one session passes the window and account filters.
func (f Filter) Match(s *models.WatchSession) bool {
	if f.AccountID > 0 && s.AccountID != f.AccountID {
		return false
	}
	if !f.bounded {
		return true
	}
	return s.HasViewedAt() && s.ViewedAt >= f.cutoff
}

// Apply returns the sessions that match, in input order.
func (f Filter) Apply(sessions []models.WatchSession) []models.WatchSession {
	return lo.Filter(sessions, func(s models.WatchSession, _ int) bool {
		return f.Match(&s)
	})
}

// MatchMedia reports whether a grouped stat passes the media type filter.
func (f Filter) MatchMedia(stat *models.MediaStat) bool {
	return f.MediaType == "" || stat.MediaType == f.MediaType
}

// Refine recomputes stat from only those of its source sessions that pass
// the filter. Display fields are kept from stat.
func (f Filter) Refine(stat models.MediaStat) models.MediaStat {
	refined := Aggregate(stat.ID, stat.MediaType, f.Apply(stat.SourceSessions))
	refined.Title = stat.Title
	refined.Thumb = stat.Thumb
	return refined
}
