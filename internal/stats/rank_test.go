// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package stats

import (
	"testing"

	"github.com/tomtom215/rewind/internal/models"
)

func ids(stats []models.MediaStat) []string {
	out := make([]string, len(stats))
	for i := range stats {
		out[i] = stats[i].ID
	}
	return out
}

func TestRank_TieBreaks(t *testing.T) {
	stats := []models.MediaStat{
		{ID: "no-time", ViewCount: 3},
		{ID: "older", ViewCount: 3, LastViewedAt: 100},
		{ID: "top", ViewCount: 5, LastViewedAt: 1},
		{ID: "newer", ViewCount: 3, LastViewedAt: 200},
		{ID: "no-time-2", ViewCount: 3},
	}

	got := ids(Rank(stats, SortPlays).All())
	want := []string{"top", "newer", "older", "no-time", "no-time-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
}

func TestRank_WatchTime(t *testing.T) {
	stats := []models.MediaStat{
		{ID: "many-plays", ViewCount: 10, TotalWatchTimeSeconds: 100},
		{ID: "long", ViewCount: 1, TotalWatchTimeSeconds: 9000},
	}
	got := Rank(stats, SortWatchTime).All()
	if got[0].ID != "long" {
		t.Errorf("expected long first, got %v", ids(got))
	}
	if stats[0].ID != "many-plays" {
		t.Error("Rank must not reorder its input")
	}
}

func TestRank_TopIsPrefixOfAll(t *testing.T) {
	groups := Group(randomHistory(5, 800))
	for _, by := range []SortOption{SortPlays, SortWatchTime} {
		r := Rank(groups, by)
		all := r.All()
		for _, n := range []int{1, 3, 10, len(all), len(all) + 5} {
			top := r.Top(n)
			if want := min(n, len(all)); len(top) != want {
				t.Errorf("%s Top(%d) len = %d, want %d", by, n, len(top), want)
			}
			for i := range top {
				if top[i].ID != all[i].ID || top[i].MediaType != all[i].MediaType {
					t.Errorf("%s Top(%d)[%d] = %s, All()[%d] = %s", by, n, i, top[i].ID, i, all[i].ID)
				}
			}
		}
		if len(r.Top(0)) != len(all) {
			t.Errorf("Top(0) should return everything")
		}
	}
}

func TestParseSortOption(t *testing.T) {
	for in, want := range map[string]SortOption{"": SortPlays, "plays": SortPlays, "watchTime": SortWatchTime, "watch_time": SortWatchTime} {
		got, err := ParseSortOption(in)
		if err != nil || got != want {
			t.Errorf("ParseSortOption(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortOption("rating"); err == nil {
		t.Error("expected error for unknown sort")
	}
}
