// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package supervisor runs Rewind's long-lived services under suture v4.

# Overview

	RootSupervisor ("rewind")
	├── SyncSupervisor ("sync-layer")
	│   ├── SyncService (gocron scheduled re-sync)
	│   ├── WebSocketHubService
	│   └── websocket.Relay (history events to WebSocket clients)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. A failing sync layer does
not stop the API from serving the last committed history.

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddSyncService(services.NewWebSocketHubService(hub))
	tree.AddSyncService(websocket.NewRelay(hub, store))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)

Supervisor events (start, failure, backoff) are logged through sutureslog
into the zerolog-backed slog handler.
*/
package supervisor
