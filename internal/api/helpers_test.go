// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
)

// fakeStore records the arguments it was called with.
type fakeStore struct {
	mu sync.Mutex

	synced    bool
	status    history.Status
	syncErr   error
	mediaErr  error
	sessions  []models.WatchSession
	top       []models.MediaStat
	users     []models.UserStat
	rewind    models.RewindReport
	syncCalls []models.FetchOptions
	syncDone  chan struct{}

	lastTop        stats.TopQuery
	lastWindow     stats.TimeWindow
	lastSort       stats.SortOption
	lastYear       int
	lastAccount    int64
	lastMediaArgs  [3]string
	lastUserLookup int64
}

func (f *fakeStore) Sync(ctx context.Context, opts models.FetchOptions) error {
	f.mu.Lock()
	f.syncCalls = append(f.syncCalls, opts)
	err := f.syncErr
	done := f.syncDone
	f.mu.Unlock()
	if done != nil {
		defer close(done)
	}
	return err
}

func (f *fakeStore) Status() history.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeStore) HasSynced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synced
}

func (f *fakeStore) HistoryForMedia(ctx context.Context, ratingKey, mediaType, grandparent string) ([]models.WatchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMediaArgs = [3]string{ratingKey, mediaType, grandparent}
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return f.sessions, nil
}

func (f *fakeStore) HistoryForUser(accountID int64) []models.WatchSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserLookup = accountID
	return f.sessions
}

func (f *fakeStore) TopMedia(q stats.TopQuery) []models.MediaStat {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTop = q
	return f.top
}

func (f *fakeStore) Users(ctx context.Context, window stats.TimeWindow, by stats.SortOption) []models.UserStat {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWindow = window
	f.lastSort = by
	return f.users
}

func (f *fakeStore) Rewind(ctx context.Context, year int, accountID int64) models.RewindReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastYear = year
	f.lastAccount = accountID
	r := f.rewind
	r.Year = year
	return r
}

func testConfig() *config.Config {
	return &config.Config{
		Plex: config.PlexConfig{URL: "http://plex.local:32400", Token: "tok", SinceYear: 2024, AccountID: 0},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitDisabled: true,
		},
	}
}

// newTestRouter returns the full chi stack over store.
func newTestRouter(t *testing.T, store HistoryStore) http.Handler {
	t.Helper()
	cfg := testConfig()
	h := NewHandler(store, nil, cfg)
	return NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFromConfig(cfg))).SetupChi()
}

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *struct {
		RequestID  string `json:"request_id"`
		DurationMs int64  `json:"duration_ms"`
		Count      *int   `json:"count"`
	} `json:"meta"`
}

func doRequest(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: body is not an API envelope: %v\n%s", method, target, err, rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v\n%s", err, env.Data)
	}
}

func checkStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func checkErrorCode(t *testing.T, env envelope, want string) {
	t.Helper()
	if env.Success {
		t.Fatal("expected success=false")
	}
	if env.Error == nil {
		t.Fatal("expected error body")
	}
	if env.Error.Code != want {
		t.Errorf("error code = %q, want %q (message %q)", env.Error.Code, want, env.Error.Message)
	}
}
