// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package websocket

import (
	"context"

	"github.com/tomtom215/rewind/internal/history"
)

// EventSource is a stream of sync events.
type EventSource interface {
	Subscribe(buffer int) (<-chan history.Event, func())
}

// Relay forwards sync events from a history store to websocket clients.
type Relay struct {
	hub    *Hub
	source EventSource
}

// NewRelay creates a relay from source to hub.
func NewRelay(hub *Hub, source EventSource) *Relay {
	return &Relay{hub: hub, source: source}
}

// Serve relays events until ctx is cancelled. Completed syncs go out as
// sync_completed, everything else as sync_progress.
func (r *Relay) Serve(ctx context.Context) error {
	events, cancel := r.source.Subscribe(128)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			msgType := MessageTypeSyncProgress
			if e.Type == history.EventSyncCompleted {
				msgType = MessageTypeSyncCompleted
			}
			r.hub.BroadcastJSON(msgType, e)
		}
	}
}

// String names the relay for the supervisor.
func (r *Relay) String() string {
	return "websocket-relay"
}
