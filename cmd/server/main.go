// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/rewind/internal/api"
	"github.com/tomtom215/rewind/internal/app"
	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/supervisor"
	"github.com/tomtom215/rewind/internal/supervisor/services"
	plexsync "github.com/tomtom215/rewind/internal/sync"
	ws "github.com/tomtom215/rewind/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().Msg("Starting Rewind with supervisor tree")
	logging.Info().
		Bool("plex_configured", cfg.Plex.HasConnection()).
		Int("since_year", cfg.Plex.SinceYear).
		Int64("account_id", cfg.Plex.AccountID).
		Str("cache", cfg.Cache.Type).
		Dur("sync_interval", cfg.Sync.Interval).
		Msg("Configuration loaded")
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS for production")
	}

	components, err := app.Build(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to assemble history pipeline")
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	wsHub := ws.NewHub()
	syncManager := plexsync.NewManager(components.Store, cfg)

	handler := api.NewHandler(components.Store, wsHub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromConfig(cfg)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// POST /api/v1/sync?wait=true holds the request for a full sync.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddSyncService(services.NewWebSocketHubService(wsHub))
	tree.AddSyncService(ws.NewRelay(wsHub, components.Store))
	tree.AddSyncService(services.NewSyncService(syncManager))
	logging.Info().Msg("WebSocket hub, relay and sync manager added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, handler))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Rewind stopped")
}
