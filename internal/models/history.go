// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package models

import (
	"strings"
	"time"
)

// Plex item types relevant to watch statistics.
const (
	TypeMovie   = "movie"
	TypeEpisode = "episode"
	TypeShow    = "show"
)

// WatchSession is one playback record from the server's watch history.
//
// Optional numeric fields use the zero value for "absent": ViewedAt == 0 means
// the server did not report when the item was watched, Duration == 0 means the
// duration is unknown (not yet enriched or enrichment failed), AccountID == 0
// means the viewing user is unknown.
type WatchSession struct {
	HistoryKey           string `json:"history_key"`
	RatingKey            string `json:"rating_key,omitempty"`
	Key                  string `json:"key,omitempty"`
	ParentRatingKey      string `json:"parent_rating_key,omitempty"`
	GrandparentRatingKey string `json:"grandparent_rating_key,omitempty"`
	GrandparentKey       string `json:"grandparent_key,omitempty"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	GrandparentTitle     string `json:"grandparent_title,omitempty"`
	Thumb                string `json:"thumb,omitempty"`
	GrandparentThumb     string `json:"grandparent_thumb,omitempty"`
	ParentIndex          int    `json:"parent_index,omitempty"`
	Index                int    `json:"index,omitempty"`
	ViewedAt             int64  `json:"viewed_at,omitempty"` // epoch seconds
	Duration             int64  `json:"duration,omitempty"`  // milliseconds
	AccountID            int64  `json:"account_id,omitempty"`
}

// HasViewedAt reports whether the session carries a watch timestamp.
func (s *WatchSession) HasViewedAt() bool {
	return s.ViewedAt != 0
}

// ViewedTime returns the watch timestamp in loc.
func (s *WatchSession) ViewedTime(loc *time.Location) (time.Time, bool) {
	if s.ViewedAt == 0 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(s.ViewedAt, 0).In(loc), true
}

// HasDuration reports whether the play duration is known.
func (s *WatchSession) HasDuration() bool {
	return s.Duration > 0
}

// WatchSeconds is the session's contribution to watch time totals.
// Unknown durations contribute zero.
func (s *WatchSession) WatchSeconds() int64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.Duration / 1000
}

// SeriesID resolves the series identity of an episode: grandparentRatingKey
// when present, otherwise the last path segment of grandparentKey.
// Returns "" when neither is available.
func (s *WatchSession) SeriesID() string {
	if s.GrandparentRatingKey != "" {
		return s.GrandparentRatingKey
	}
	return lastPathSegment(s.GrandparentKey)
}

// GroupKey returns the grouping identity and the aggregated media type.
// ok is false for sessions that belong to no group.
func (s *WatchSession) GroupKey() (id, mediaType string, ok bool) {
	switch s.Type {
	case TypeMovie:
		if s.RatingKey == "" {
			return "", "", false
		}
		return s.RatingKey, TypeMovie, true
	case TypeEpisode:
		sid := s.SeriesID()
		if sid == "" {
			return "", "", false
		}
		return sid, TypeShow, true
	default:
		return "", "", false
	}
}

func lastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// MediaStat is the aggregated statistic for one movie or one show.
type MediaStat struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	MediaType             string `json:"media_type"`
	Thumb                 string `json:"thumb,omitempty"`
	ViewCount             int    `json:"view_count"`
	TotalWatchTimeSeconds int64  `json:"total_watch_time_seconds"`
	UnknownDurationCount  int    `json:"unknown_duration_count"`
	LastViewedAt          int64  `json:"last_viewed_at,omitempty"`

	SourceSessions []WatchSession `json:"sessions,omitempty"`
}

// FetchOptions narrows a history fetch.
type FetchOptions struct {
	// SinceYear stops paging once records older than Jan 1 of this year are
	// reached. Zero fetches everything.
	SinceYear int `json:"since_year,omitempty"`

	// AccountID limits the history to one account. Zero fetches all accounts.
	AccountID int64 `json:"account_id,omitempty"`
}

// Connection identifies the media server and the token used to reach it.
type Connection struct {
	BaseURL string
	Token   string
}

// Valid reports whether both the server and the token are present.
func (c Connection) Valid() bool {
	return c.BaseURL != "" && c.Token != ""
}
