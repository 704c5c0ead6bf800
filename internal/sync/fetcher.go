// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/metrics"
	"github.com/tomtom215/rewind/internal/models"
)

// HistoryPager returns one page of history, newest first.
type HistoryPager interface {
	HistoryPage(ctx context.Context, start, size int, accountID int64) ([]models.WatchSession, error)
}

// HistoryFetcher pages through the complete watch history.
type HistoryFetcher struct {
	pager    HistoryPager
	pageSize int
	maxPages int
	loc      *time.Location
}

// FetcherOption customizes a HistoryFetcher.
type FetcherOption func(*HistoryFetcher)

// WithMaxPages bounds the number of pages requested by one fetch.
func WithMaxPages(n int) FetcherOption {
	return func(f *HistoryFetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithLocation sets the zone used to compute the SinceYear boundary.
func WithLocation(loc *time.Location) FetcherOption {
	return func(f *HistoryFetcher) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// NewHistoryFetcher creates a fetcher reading pages of HistoryPageSize records.
func NewHistoryFetcher(pager HistoryPager, opts ...FetcherOption) *HistoryFetcher {
	f := &HistoryFetcher{
		pager:    pager,
		pageSize: HistoryPageSize,
		maxPages: 2000,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchHistory returns the full history, newest first.
//
// Paging stops on the first of:
//   - an empty page
//   - a page whose first history key repeats the previous page's first key
//     (the server ignored the offset; the page is not appended)
//   - with SinceYear set, a page whose last record was viewed before Jan 1
//     of SinceYear (the page is appended)
//
// Any request error aborts the fetch and no partial result is returned.
func (f *HistoryFetcher) FetchHistory(ctx context.Context, opts models.FetchOptions, progress chan<- models.Progress) ([]models.WatchSession, error) {
	var cutoff int64
	if opts.SinceYear > 0 {
		cutoff = time.Date(opts.SinceYear, time.January, 1, 0, 0, 0, 0, f.loc).Unix()
	}

	log := logging.Ctx(ctx)
	var (
		all       []models.WatchSession
		prevFirst string
		start     int
	)

	for page := 0; ; page++ {
		if page >= f.maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages", ErrPageLimit, f.maxPages)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := f.pager.HistoryPage(ctx, start, f.pageSize, opts.AccountID)
		if err != nil {
			return nil, fmt.Errorf("fetch history page at offset %d: %w", start, err)
		}
		metrics.HistoryPagesFetched.Inc()

		if len(batch) == 0 {
			log.Debug().Int("page", page).Msg("empty history page, paging complete")
			break
		}
		if page > 0 && batch[0].HistoryKey == prevFirst {
			log.Debug().Int("page", page).Str("history_key", prevFirst).Msg("history page repeated, paging complete")
			break
		}
		prevFirst = batch[0].HistoryKey

		all = append(all, batch...)
		models.SendProgress(progress, models.Progress{Stage: models.StageFetch, Done: len(all)})

		if cutoff != 0 {
			last := batch[len(batch)-1]
			if last.HasViewedAt() && last.ViewedAt < cutoff {
				log.Debug().Int("since_year", opts.SinceYear).Int("page", page).Msg("reached year boundary, paging complete")
				break
			}
		}

		start += f.pageSize
	}

	log.Info().Int("sessions", len(all)).Msg("history fetched")
	return all, nil
}
