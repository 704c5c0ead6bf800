// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package models

import "time"

// RewindReport is the year-in-review summary derived from cached history.
type RewindReport struct {
	Year        int       `json:"year"`
	AccountID   int64     `json:"account_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// SyncedSinceYear is the earliest year the synced history reaches back
	// to, 0 when it was read in full. Complete is false when the synced
	// history does not cover Year (or the account) so an empty report does
	// not mean nothing was watched.
	SyncedSinceYear int  `json:"synced_since_year,omitempty"`
	Complete        bool `json:"complete"`

	TotalPlays            int   `json:"total_plays"`
	TotalWatchTimeSeconds int64 `json:"total_watch_time_seconds"`
	UnknownDurationCount  int   `json:"unknown_duration_count"`
	UniqueTitles          int   `json:"unique_titles"`
	DaysActive            int   `json:"days_active"`
	LongestStreakDays     int   `json:"longest_streak_days"`

	PlaysByMonth   [12]int `json:"plays_by_month"`   // 0 = January
	PlaysByWeekday [7]int  `json:"plays_by_weekday"` // 0 = Sunday
	PlaysByHour    [24]int `json:"plays_by_hour"`
	PeakMonth      string  `json:"peak_month,omitempty"`
	PeakWeekday    string  `json:"peak_weekday,omitempty"`
	PeakHour       int     `json:"peak_hour"`

	TopMoviesByPlays     []RewindRank `json:"top_movies_by_plays"`
	TopMoviesByWatchTime []RewindRank `json:"top_movies_by_watch_time"`
	TopShowsByPlays      []RewindRank `json:"top_shows_by_plays"`
	TopShowsByWatchTime  []RewindRank `json:"top_shows_by_watch_time"`

	FirstWatch *RewindWatch `json:"first_watch,omitempty"`
	LastWatch  *RewindWatch `json:"last_watch,omitempty"`
}

// RewindRank is one ranked title in a rewind report.
type RewindRank struct {
	Rank                  int    `json:"rank"`
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	MediaType             string `json:"media_type"`
	Thumb                 string `json:"thumb,omitempty"`
	ViewCount             int    `json:"view_count"`
	TotalWatchTimeSeconds int64  `json:"total_watch_time_seconds"`
}

// RewindWatch marks a single notable watch.
type RewindWatch struct {
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	ViewedAt time.Time `json:"viewed_at"`
}

// UserStat is one row of the per-user breakdown.
type UserStat struct {
	AccountID             int64  `json:"account_id"`
	Name                  string `json:"name,omitempty"`
	ViewCount             int    `json:"view_count"`
	TotalWatchTimeSeconds int64  `json:"total_watch_time_seconds"`
	UnknownDurationCount  int    `json:"unknown_duration_count"`
	UniqueTitles          int    `json:"unique_titles"`
	LastViewedAt          int64  `json:"last_viewed_at,omitempty"`
}

// Account is a server account as reported by the media server.
type Account struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
