// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package history

import (
	"time"

	"github.com/tomtom215/rewind/internal/metrics"
	"github.com/tomtom215/rewind/internal/models"
)

// EventType names a sync lifecycle event.
type EventType string

const (
	EventSyncStarted   EventType = "sync_started"
	EventSyncProgress  EventType = "sync_progress"
	EventSyncCompleted EventType = "sync_completed"
	EventSyncFailed    EventType = "sync_failed"
	EventSyncCancelled EventType = "sync_cancelled"
)

// Event is one entry of the store's progress stream.
type Event struct {
	Type      EventType        `json:"type"`
	SyncID    string           `json:"sync_id"`
	Progress  *models.Progress `json:"progress,omitempty"`
	Sessions  int              `json:"sessions,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty"`
	Time      time.Time        `json:"time"`
}

// Subscribe returns a stream of sync events and a cancel function that
// closes it. Delivery never blocks the sync: when the buffer is full the
// event is dropped.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) publish(e Event) {
	if e.Time.IsZero() {
		e.Time = s.clock.Now()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			metrics.ProgressEventsDropped.Inc()
		}
	}
}
