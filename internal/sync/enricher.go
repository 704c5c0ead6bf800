// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/metrics"
	"github.com/tomtom215/rewind/internal/models"
)

// MetadataSource resolves the duration of one library item.
type MetadataSource interface {
	MetadataDuration(ctx context.Context, ratingKey string) (int64, error)
}

// ServerKeyer identifies the server a MetadataSource reads from. Sources
// that implement it get their cached durations scoped to that server.
type ServerKeyer interface {
	ServerKey(ctx context.Context) (string, error)
}

// DurationStore remembers resolved durations between syncs, per server.
type DurationStore interface {
	Get(ctx context.Context, server, ratingKey string) (int64, bool)
	Set(ctx context.Context, server, ratingKey string, durationMs int64) error
}

// DefaultEnrichConcurrency is the number of metadata requests in flight.
const DefaultEnrichConcurrency = 8

// DurationEnricher backfills missing durations with bounded concurrency.
type DurationEnricher struct {
	source      MetadataSource
	store       DurationStore
	concurrency int
}

// NewDurationEnricher creates an enricher. store may be nil.
func NewDurationEnricher(source MetadataSource, store DurationStore, concurrency int) *DurationEnricher {
	if concurrency < 1 {
		concurrency = DefaultEnrichConcurrency
	}
	return &DurationEnricher{source: source, store: store, concurrency: concurrency}
}

// Enrich returns a copy of sessions, same length and order, with durations
// filled in where they could be resolved.
//
// Sessions that already have a duration are passed through. The rest are
// looked up once per rating key: cache first, then the metadata endpoint.
// A failed lookup leaves Duration at 0 and never fails the batch. The only
// error returned is the context error when ctx is cancelled.
func (e *DurationEnricher) Enrich(ctx context.Context, sessions []models.WatchSession, progress chan<- models.Progress) ([]models.WatchSession, error) {
	out := make([]models.WatchSession, len(sessions))
	copy(out, sessions)

	positions := make(map[string][]int)
	var keys []string
	for i := range out {
		if out[i].HasDuration() || out[i].RatingKey == "" {
			continue
		}
		k := out[i].RatingKey
		if _, seen := positions[k]; !seen {
			keys = append(keys, k)
		}
		positions[k] = append(positions[k], i)
	}
	if len(keys) == 0 {
		return out, nil
	}

	log := logging.Ctx(ctx)
	store, server := e.storeFor(ctx)
	durations := make([]int64, len(keys))
	pending := make([]int, 0, len(keys))
	for i, k := range keys {
		if store != nil {
			if d, ok := store.Get(ctx, server, k); ok {
				durations[i] = d
				metrics.RecordEnrichResult("cached")
				continue
			}
		}
		pending = append(pending, i)
	}

	total := len(keys)
	var done atomic.Int64
	done.Store(int64(total - len(pending)))
	models.SendProgress(progress, models.Progress{Stage: models.StageEnrich, Done: int(done.Load()), Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, ki := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			metrics.EnrichInFlight.Inc()
			defer metrics.EnrichInFlight.Dec()

			key := keys[ki]
			d, err := e.source.MetadataDuration(gctx, key)
			switch {
			case err != nil:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				metrics.RecordEnrichResult("failed")
				log.Debug().Err(err).Str("rating_key", key).Msg("duration lookup failed")
			case d <= 0:
				metrics.RecordEnrichResult("missing")
			default:
				durations[ki] = d
				metrics.RecordEnrichResult("success")
				if store != nil {
					if err := store.Set(ctx, server, key, d); err != nil {
						log.Debug().Err(err).Str("rating_key", key).Msg("duration cache write failed")
					}
				}
			}

			n := done.Add(1)
			models.SendProgress(progress, models.Progress{Stage: models.StageEnrich, Done: int(n), Total: total})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var resolved int
	for i, k := range keys {
		if durations[i] <= 0 {
			continue
		}
		resolved++
		for _, pos := range positions[k] {
			out[pos].Duration = durations[i]
		}
	}

	log.Info().Int("lookups", total).Int("resolved", resolved).Msg("durations enriched")
	return out, nil
}

// storeFor returns the duration store and the server its keys are scoped to.
// When the server cannot be identified the cache is skipped for this run.
func (e *DurationEnricher) storeFor(ctx context.Context) (DurationStore, string) {
	if e.store == nil {
		return nil, ""
	}
	keyer, ok := e.source.(ServerKeyer)
	if !ok {
		return e.store, ""
	}
	server, err := keyer.ServerKey(ctx)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("server key unavailable, duration cache skipped")
		return nil, ""
	}
	return e.store, server
}
