// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/rewind/internal/models"
)

// fakeMetadata answers duration lookups from a map and tracks concurrency.
type fakeMetadata struct {
	mu        gosync.Mutex
	durations map[string]int64
	failures  map[string]error
	calls     map[string]int
	delay     time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeMetadata(durations map[string]int64) *fakeMetadata {
	return &fakeMetadata{durations: durations, failures: map[string]error{}, calls: map[string]int{}}
}

func (m *fakeMetadata) MetadataDuration(ctx context.Context, ratingKey string) (int64, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls[ratingKey]++
	err := m.failures[ratingKey]
	d := m.durations[ratingKey]
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if err != nil {
		return 0, err
	}
	return d, nil
}

// mapStore is an in-memory DurationStore.
type mapStore struct {
	m gosync.Map
}

func (s *mapStore) Get(_ context.Context, server, key string) (int64, bool) {
	v, ok := s.m.Load(server + "|" + key)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

func (s *mapStore) Set(_ context.Context, server, key string, d int64) error {
	s.m.Store(server+"|"+key, d)
	return nil
}

// serverMetadata is a fakeMetadata that names the server it reads from.
type serverMetadata struct {
	*fakeMetadata
	server string
	err    error
}

func (m serverMetadata) ServerKey(context.Context) (string, error) {
	return m.server, m.err
}

func session(historyKey, ratingKey string, duration int64) models.WatchSession {
	return models.WatchSession{HistoryKey: historyKey, RatingKey: ratingKey, Type: models.TypeMovie, Duration: duration}
}

func TestDurationEnricher_FillsInOrder(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000, "b": 2000, "c": 3000})
	in := []models.WatchSession{
		session("h1", "a", 0),
		session("h2", "b", 0),
		session("h3", "x", 9000),
		session("h4", "c", 0),
	}

	out, err := NewDurationEnricher(source, nil, 2).Enrich(context.Background(), in, nil)
	checkNoError(t, err)
	checkHistoryKeys(t, out, "h1", "h2", "h3", "h4")
	checkInt64Equal(t, "h1", out[0].Duration, 1000)
	checkInt64Equal(t, "h2", out[1].Duration, 2000)
	checkInt64Equal(t, "h3 untouched", out[2].Duration, 9000)
	checkInt64Equal(t, "h4", out[3].Duration, 3000)
	checkIntEqual(t, "lookup of known duration", source.calls["x"], 0)
	checkInt64Equal(t, "input not mutated", in[0].Duration, 0)
}

func TestDurationEnricher_DedupesRatingKeys(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000})
	in := []models.WatchSession{session("h1", "a", 0), session("h2", "a", 0), session("h3", "a", 0)}

	out, err := NewDurationEnricher(source, nil, 4).Enrich(context.Background(), in, nil)
	checkNoError(t, err)
	checkIntEqual(t, "calls", source.calls["a"], 1)
	for i := range out {
		checkInt64Equal(t, out[i].HistoryKey, out[i].Duration, 1000)
	}
}

func TestDurationEnricher_FailuresAreSwallowed(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000, "c": 3000})
	source.failures["b"] = &ServerError{StatusCode: 404, Path: "/library/metadata/b"}
	source.failures["d"] = ErrDecoding
	in := []models.WatchSession{
		session("h1", "a", 0),
		session("h2", "b", 0),
		session("h3", "c", 0),
		session("h4", "d", 0),
		session("h5", "", 0),
	}

	out, err := NewDurationEnricher(source, nil, 3).Enrich(context.Background(), in, nil)
	checkNoError(t, err)
	checkIntEqual(t, "len", len(out), len(in))
	var unknown int
	for i := range out {
		if !out[i].HasDuration() {
			unknown++
		}
	}
	checkIntEqual(t, "unknown durations", unknown, 3)
	checkInt64Equal(t, "h3", out[2].Duration, 3000)
}

func TestDurationEnricher_UsesCache(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000, "b": 2000})
	store := &mapStore{}
	_ = store.Set(context.Background(), "", "a", 4242)

	e := NewDurationEnricher(source, store, 2)
	out, err := e.Enrich(context.Background(), []models.WatchSession{session("h1", "a", 0), session("h2", "b", 0)}, nil)
	checkNoError(t, err)
	checkInt64Equal(t, "cached", out[0].Duration, 4242)
	checkIntEqual(t, "cached lookups", source.calls["a"], 0)

	if d, ok := store.Get(context.Background(), "", "b"); !ok || d != 2000 {
		t.Errorf("expected resolved duration written to cache, got %d, %v", d, ok)
	}
}

func TestDurationEnricher_CacheScopedToServer(t *testing.T) {
	ctx := context.Background()
	store := &mapStore{}
	_ = store.Set(ctx, "http://plex-a:32400", "a", 4242)

	other := serverMetadata{fakeMetadata: newFakeMetadata(map[string]int64{"a": 1000}), server: "http://plex-b:32400"}
	out, err := NewDurationEnricher(other, store, 2).Enrich(ctx, []models.WatchSession{session("h1", "a", 0)}, nil)
	checkNoError(t, err)
	checkInt64Equal(t, "duration from second server", out[0].Duration, 1000)
	checkIntEqual(t, "lookups on second server", other.calls["a"], 1)

	if d, ok := store.Get(ctx, "http://plex-b:32400", "a"); !ok || d != 1000 {
		t.Errorf("expected duration cached under second server, got %d, %v", d, ok)
	}
	if d, _ := store.Get(ctx, "http://plex-a:32400", "a"); d != 4242 {
		t.Errorf("first server entry overwritten: %d", d)
	}

	same := serverMetadata{fakeMetadata: newFakeMetadata(map[string]int64{"a": 1000}), server: "http://plex-a:32400"}
	out, err = NewDurationEnricher(same, store, 2).Enrich(ctx, []models.WatchSession{session("h1", "a", 0)}, nil)
	checkNoError(t, err)
	checkInt64Equal(t, "cached duration", out[0].Duration, 4242)
	checkIntEqual(t, "lookups on first server", same.calls["a"], 0)
}

func TestDurationEnricher_SkipsCacheWithoutServerKey(t *testing.T) {
	ctx := context.Background()
	store := &mapStore{}
	_ = store.Set(ctx, "", "a", 4242)

	source := serverMetadata{fakeMetadata: newFakeMetadata(map[string]int64{"a": 1000}), err: ErrNoSelection}
	out, err := NewDurationEnricher(source, store, 2).Enrich(ctx, []models.WatchSession{session("h1", "a", 0)}, nil)
	checkNoError(t, err)
	checkInt64Equal(t, "looked up duration", out[0].Duration, 1000)
	checkIntEqual(t, "lookups", source.calls["a"], 1)
}

func TestDurationEnricher_BoundsConcurrency(t *testing.T) {
	durations := map[string]int64{}
	var in []models.WatchSession
	for _, k := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"} {
		durations[k] = 1000
		in = append(in, session("h"+k, k, 0))
	}
	source := newFakeMetadata(durations)
	source.delay = 5 * time.Millisecond

	_, err := NewDurationEnricher(source, nil, 3).Enrich(context.Background(), in, nil)
	checkNoError(t, err)
	if got := source.maxInFlight.Load(); got > 3 {
		t.Errorf("max in-flight lookups = %d, want <= 3", got)
	}
}

func TestDurationEnricher_Cancelled(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000, "b": 1000})
	source.delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out, err := NewDurationEnricher(source, nil, 2).Enrich(ctx, []models.WatchSession{session("h1", "a", 0), session("h2", "b", 0)}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if out != nil {
		t.Error("expected no result when cancelled")
	}
}

func TestDurationEnricher_ReportsProgress(t *testing.T) {
	source := newFakeMetadata(map[string]int64{"a": 1000, "b": 2000})
	progress := make(chan models.Progress, 10)

	_, err := NewDurationEnricher(source, nil, 1).Enrich(context.Background(),
		[]models.WatchSession{session("h1", "a", 0), session("h2", "b", 0)}, progress)
	checkNoError(t, err)
	close(progress)

	var last models.Progress
	var n int
	for p := range progress {
		checkStringEqual(t, "stage", string(p.Stage), string(models.StageEnrich))
		last = p
		n++
	}
	checkIntEqual(t, "reports", n, 3)
	checkIntEqual(t, "final done", last.Done, 2)
	checkIntEqual(t, "final total", last.Total, 2)
}
