// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/models"
	plexsync "github.com/tomtom215/rewind/internal/sync"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatWatchTime renders seconds as "3d 4h 12m", "45m" or "30s".
func formatWatchTime(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	d := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60

	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%sd", humanize.Comma(d)))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}

func formatLastViewed(viewedAt int64, now time.Time) string {
	if viewedAt <= 0 {
		return "-"
	}
	return humanize.RelTime(time.Unix(viewedAt, 0), now, "ago", "from now")
}

// watchTimeCell marks totals that are missing some durations.
func watchTimeCell(seconds int64, unknown int) string {
	s := formatWatchTime(seconds)
	if unknown > 0 {
		s += fmt.Sprintf(" (+%d unknown)", unknown)
	}
	return s
}

func printStatus(w io.Writer, s history.Status) {
	fmt.Fprintf(w, "Synced %s sessions", humanize.Comma(int64(s.Sessions)))
	if s.SinceYear > 0 {
		fmt.Fprintf(w, " since %d", s.SinceYear)
	}
	if s.LastSyncAt != nil {
		fmt.Fprintf(w, " at %s", s.LastSyncAt.Format(time.RFC3339))
	}
	fmt.Fprintln(w)
	if s.SyncID != "" {
		fmt.Fprintf(w, "Sync ID: %s\n", s.SyncID)
	}
}

func printTopMedia(w io.Writer, top []models.MediaStat, now time.Time) {
	if len(top) == 0 {
		fmt.Fprintln(w, "No plays in this window.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tTITLE\tTYPE\tPLAYS\tWATCH TIME\tLAST WATCHED")
	for i := range top {
		m := &top[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			m.Title,
			m.MediaType,
			humanize.Comma(int64(m.ViewCount)),
			watchTimeCell(m.TotalWatchTimeSeconds, m.UnknownDurationCount),
			formatLastViewed(m.LastViewedAt, now),
		)
	}
	_ = tw.Flush()
}

func printUsers(w io.Writer, users []models.UserStat, now time.Time) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No plays in this window.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tACCOUNT\tNAME\tPLAYS\tTITLES\tWATCH TIME\tLAST WATCHED")
	for i := range users {
		u := &users[i]
		name := u.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			u.AccountID,
			name,
			humanize.Comma(int64(u.ViewCount)),
			humanize.Comma(int64(u.UniqueTitles)),
			watchTimeCell(u.TotalWatchTimeSeconds, u.UnknownDurationCount),
			formatLastViewed(u.LastViewedAt, now),
		)
	}
	_ = tw.Flush()
}

func printRewind(w io.Writer, r models.RewindReport) {
	who := "Everyone"
	switch {
	case r.Username != "":
		who = r.Username
	case r.AccountID != 0:
		who = fmt.Sprintf("Account %d", r.AccountID)
	}
	fmt.Fprintf(w, "%s's %d Rewind\n\n", who, r.Year)

	if !r.Complete && r.SyncedSinceYear > r.Year {
		fmt.Fprintf(w, "History is only synced from %d; use --since-year %d to include %d.\n\n",
			r.SyncedSinceYear, r.Year, r.Year)
	}

	if r.TotalPlays == 0 {
		fmt.Fprintln(w, "Nothing watched this year.")
		return
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Plays\t%s\n", humanize.Comma(int64(r.TotalPlays)))
	fmt.Fprintf(tw, "Watch time\t%s\n", watchTimeCell(r.TotalWatchTimeSeconds, r.UnknownDurationCount))
	fmt.Fprintf(tw, "Titles\t%s\n", humanize.Comma(int64(r.UniqueTitles)))
	fmt.Fprintf(tw, "Days active\t%d\n", r.DaysActive)
	fmt.Fprintf(tw, "Longest streak\t%d days\n", r.LongestStreakDays)
	if r.PeakMonth != "" {
		fmt.Fprintf(tw, "Busiest month\t%s\n", r.PeakMonth)
	}
	if r.PeakWeekday != "" {
		fmt.Fprintf(tw, "Busiest weekday\t%s\n", r.PeakWeekday)
	}
	fmt.Fprintf(tw, "Busiest hour\t%02d:00\n", r.PeakHour)
	if r.FirstWatch != nil {
		fmt.Fprintf(tw, "First watch\t%s (%s)\n", r.FirstWatch.Title, r.FirstWatch.ViewedAt.Format("Jan 2"))
	}
	if r.LastWatch != nil {
		fmt.Fprintf(tw, "Last watch\t%s (%s)\n", r.LastWatch.Title, r.LastWatch.ViewedAt.Format("Jan 2"))
	}
	_ = tw.Flush()

	printRanks(w, "Top movies", r.TopMoviesByPlays)
	printRanks(w, "Top shows", r.TopShowsByPlays)
	printRanks(w, "Most time spent on", r.TopShowsByWatchTime)
}

func printRanks(w io.Writer, heading string, ranks []models.RewindRank) {
	if len(ranks) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", heading)
	tw := newTable(w)
	for _, r := range ranks {
		fmt.Fprintf(tw, "  %d.\t%s\t%s plays\t%s\n",
			r.Rank, r.Title, humanize.Comma(int64(r.ViewCount)), formatWatchTime(r.TotalWatchTimeSeconds))
	}
	_ = tw.Flush()
}

// printEvents writes one line per progress event until events is closed.
func printEvents(w io.Writer, events <-chan history.Event) {
	for e := range events {
		switch e.Type {
		case history.EventSyncStarted:
			fmt.Fprintln(w, "Reading watch history...")
		case history.EventSyncProgress:
			if e.Progress == nil {
				continue
			}
			switch e.Progress.Stage {
			case models.StageFetch:
				fmt.Fprintf(w, "  fetched %s sessions\n", humanize.Comma(int64(e.Progress.Done)))
			case models.StageEnrich:
				fmt.Fprintf(w, "  durations %s/%s\n",
					humanize.Comma(int64(e.Progress.Done)), humanize.Comma(int64(e.Progress.Total)))
			}
		case history.EventSyncCompleted:
			fmt.Fprintf(w, "Done: %s sessions\n", humanize.Comma(int64(e.Sessions)))
		}
	}
}

// describeSyncError adds a hint for the failures a user can fix.
func describeSyncError(err error) error {
	switch {
	case errors.Is(err, plexsync.ErrNoSelection):
		return fmt.Errorf("%w (set PLEX_URL and PLEX_TOKEN or plex.url and plex.token in config.yaml)", err)
	case errors.Is(err, plexsync.ErrPageLimit):
		return fmt.Errorf("%w (raise SYNC_MAX_PAGES or use --since-year)", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("sync interrupted: %w", err)
	default:
		return err
	}
}
