// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/tomtom215/rewind/internal/models"
)

func movie(ratingKey, title string, viewedAt, durationMs, account int64) models.WatchSession {
	return models.WatchSession{
		HistoryKey: fmt.Sprintf("%s@%d", ratingKey, viewedAt),
		RatingKey:  ratingKey,
		Type:       models.TypeMovie,
		Title:      title,
		ViewedAt:   viewedAt,
		Duration:   durationMs,
		AccountID:  account,
	}
}

func episode(ratingKey, series, seriesTitle string, viewedAt, durationMs, account int64) models.WatchSession {
	return models.WatchSession{
		HistoryKey:           fmt.Sprintf("%s@%d", ratingKey, viewedAt),
		RatingKey:            ratingKey,
		GrandparentRatingKey: series,
		Type:                 models.TypeEpisode,
		Title:                "Episode " + ratingKey,
		GrandparentTitle:     seriesTitle,
		ViewedAt:             viewedAt,
		Duration:             durationMs,
		AccountID:            account,
	}
}

// randomHistory builds a reproducible mixed history.
func randomHistory(seed uint64, n int) []models.WatchSession {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]models.WatchSession, n)
	for i := range out {
		viewedAt := int64(1_600_000_000 + r.IntN(100_000_000))
		if r.IntN(10) == 0 {
			viewedAt = 0
		}
		var d int64
		if r.IntN(4) != 0 {
			d = int64(r.IntN(10_000_000))
		}
		account := int64(r.IntN(4))
		if r.IntN(2) == 0 {
			out[i] = movie(fmt.Sprintf("m%d", r.IntN(15)), "Movie", viewedAt, d, account)
		} else {
			out[i] = episode(fmt.Sprintf("e%d", i), fmt.Sprintf("s%d", r.IntN(6)), "Series", viewedAt, d, account)
		}
		out[i].HistoryKey = fmt.Sprintf("h%d", i)
	}
	return out
}

func checkStat(t *testing.T, got models.MediaStat, viewCount int, watchSeconds, lastViewedAt int64) {
	t.Helper()
	if got.ViewCount != viewCount {
		t.Errorf("%s ViewCount = %d, want %d", got.ID, got.ViewCount, viewCount)
	}
	if got.TotalWatchTimeSeconds != watchSeconds {
		t.Errorf("%s TotalWatchTimeSeconds = %d, want %d", got.ID, got.TotalWatchTimeSeconds, watchSeconds)
	}
	if got.LastViewedAt != lastViewedAt {
		t.Errorf("%s LastViewedAt = %d, want %d", got.ID, got.LastViewedAt, lastViewedAt)
	}
}

// statsByKey indexes stats without source sessions for comparison.
func statsByKey(stats []models.MediaStat) map[string]models.MediaStat {
	out := make(map[string]models.MediaStat, len(stats))
	for _, s := range stats {
		s.SourceSessions = nil
		out[s.MediaType+"/"+s.ID] = s
	}
	return out
}
