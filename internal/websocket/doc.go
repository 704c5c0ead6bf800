// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package websocket streams sync progress to connected clients.

It uses gorilla/websocket with a hub-client architecture:

	history.Store --Subscribe--> Relay --BroadcastJSON--> Hub --> Client1..N

Key Components:

  - Hub: owns the client set and fans messages out, supervised via RunWithContext
  - Client: one connection with a readPump (pings) and a writePump (messages, keepalive)
  - Relay: subscribes to history events and forwards them to the hub

Message Types:

	sync_progress   history.Event for started, progress, failed and cancelled
	sync_completed  history.Event when a sync commits
	ping / pong     client keepalive

Slow clients whose send buffer fills up are disconnected rather than
allowed to block a broadcast.
*/
package websocket
