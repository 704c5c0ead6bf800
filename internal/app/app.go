// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

// Package app assembles the history pipeline shared by the server and the CLI.
package app

import (
	"fmt"

	"github.com/tomtom215/rewind/internal/cache"
	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/models"
	plexsync "github.com/tomtom215/rewind/internal/sync"
)

// Components is the wired pipeline: Plex client, duration and account
// caches, fetcher, enricher and the history store on top.
type Components struct {
	Config *config.Config
	Cache  *cache.Backend
	Client *plexsync.PlexClient
	Store  *history.Store
}

// Build wires the pipeline from configuration. Nothing talks to Plex until
// the first sync.
func Build(cfg *config.Config) (*Components, error) {
	loc, err := cfg.Sync.Location()
	if err != nil {
		return nil, err
	}

	backend := cache.NewBackend(&cfg.Cache)
	client := plexsync.NewPlexClientFromConfig(&cfg.Plex)

	fetcher := plexsync.NewHistoryFetcher(client,
		plexsync.WithMaxPages(cfg.Sync.MaxPages),
		plexsync.WithLocation(loc),
	)
	enricher := plexsync.NewDurationEnricher(client, cache.NewDurationCache(backend), cfg.Sync.EnrichConcurrency)
	accounts := plexsync.NewAccountDirectory(client, cache.NewAccountCache(backend))

	store := history.New(fetcher, enricher,
		history.WithAccounts(accounts),
		history.WithLocation(loc),
		history.WithDefaultOptions(models.FetchOptions{
			SinceYear: cfg.Plex.SinceYear,
			AccountID: cfg.Plex.AccountID,
		}),
	)

	logging.Debug().
		Str("cache", backend.Type()).
		Str("timezone", loc.String()).
		Bool("plex_configured", cfg.Plex.HasConnection()).
		Msg("History pipeline assembled")

	return &Components{
		Config: cfg,
		Cache:  backend,
		Client: client,
		Store:  store,
	}, nil
}

// Close releases the cache backend.
func (c *Components) Close() error {
	if err := c.Cache.Close(); err != nil {
		return fmt.Errorf("close %s cache: %w", c.Cache.Type(), err)
	}
	return nil
}
