// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package services adapts Rewind components to suture.Service.

suture expects a blocking Serve(ctx) error that returns when ctx is
cancelled. Components with a different lifecycle get a thin wrapper here.

# Wrappers

  - SyncService: Start/Stop sync manager (gocron schedule) held open until
    the service context ends
  - WebSocketHubService: the hub's RunWithContext with a service name
  - HTTPServerService: ListenAndServe plus graceful Shutdown, and hands the
    service context to the API handler for background syncs

websocket.Relay already implements suture.Service and is added directly.

# Usage

	tree.AddSyncService(services.NewSyncService(manager))
	tree.AddSyncService(services.NewWebSocketHubService(hub))
	tree.AddSyncService(websocket.NewRelay(hub, store))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, handler))

# Errors

A wrapper returns an error when its component fails to start so that suture
restarts it with backoff. Returning ctx.Err() after cancellation marks a
clean stop.
*/
package services
