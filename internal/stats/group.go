// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"github.com/tomtom215/rewind/internal/models"
)

// Group partitions sessions into per-movie and per-show statistics.
//
// Movies group by rating key, episodes by their series id. Sessions of other
// types, and sessions without a usable key, are left out. Groups appear in
// the order their first session appears in the input. Every returned stat
// carries its source sessions.
func Group(sessions []models.WatchSession) []models.MediaStat {
	index := make(map[string]int)
	var buckets [][]models.WatchSession
	var ids, types []string

	for i := range sessions {
		id, mediaType, ok := sessions[i].GroupKey()
		if !ok {
			continue
		}
		// Movie and show ids come from different key spaces.
		k := mediaType + "\x00" + id
		at, seen := index[k]
		if !seen {
			at = len(buckets)
			index[k] = at
			buckets = append(buckets, nil)
			ids = append(ids, id)
			types = append(types, mediaType)
		}
		buckets[at] = append(buckets[at], sessions[i])
	}

	out := make([]models.MediaStat, len(buckets))
	for i := range buckets {
		out[i] = Aggregate(ids[i], types[i], buckets[i])
	}
	return out
}

// Aggregate computes one MediaStat from the sessions of a single group.
// Display fields come from the first session.
func Aggregate(id, mediaType string, sessions []models.WatchSession) models.MediaStat {
	stat := models.MediaStat{
		ID:             id,
		MediaType:      mediaType,
		SourceSessions: sessions,
	}
	if len(sessions) > 0 {
		stat.Title, stat.Thumb = displayFields(&sessions[0], mediaType)
	}

	for i := range sessions {
		s := &sessions[i]
		stat.ViewCount++
		if s.HasDuration() {
			stat.TotalWatchTimeSeconds += s.WatchSeconds()
		} else {
			stat.UnknownDurationCount++
		}
		if s.ViewedAt > stat.LastViewedAt {
			stat.LastViewedAt = s.ViewedAt
		}
	}
	return stat
}

func displayFields(s *models.WatchSession, mediaType string) (title, thumb string) {
	if mediaType != models.TypeShow {
		return s.Title, s.Thumb
	}
	title, thumb = s.GrandparentTitle, s.GrandparentThumb
	if title == "" {
		title = s.Title
	}
	if thumb == "" {
		thumb = s.Thumb
	}
	return title, thumb
}

// WithoutSessions returns a copy of stats with SourceSessions cleared.
func WithoutSessions(stats []models.MediaStat) []models.MediaStat {
	out := make([]models.MediaStat, len(stats))
	for i := range stats {
		out[i] = stats[i]
		out[i].SourceSessions = nil
	}
	return out
}
