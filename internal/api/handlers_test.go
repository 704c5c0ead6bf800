// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
	plexsync "github.com/tomtom215/rewind/internal/sync"
)

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, &fakeStore{})

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/health/live")
	checkStatus(t, rec, http.StatusOK)

	var body liveness
	decodeData(t, env, &body)
	if !body.Alive {
		t.Error("expected alive=true")
	}
	if env.Meta == nil || env.Meta.RequestID == "" {
		t.Error("expected request id in meta")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on health routes")
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		synced     bool
		wantStatus int
	}{
		{"never synced", false, http.StatusServiceUnavailable},
		{"synced", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{synced: tt.synced, status: history.Status{State: history.StateIdle}}
			rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/health/ready")
			checkStatus(t, rec, tt.wantStatus)

			var body readiness
			decodeData(t, env, &body)
			if body.Ready != tt.synced {
				t.Errorf("ready = %v, want %v", body.Ready, tt.synced)
			}
			if !body.PlexConfigured {
				t.Error("expected plex_configured=true")
			}
		})
	}
}

func TestTriggerSync_WaitMapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no selection", plexsync.ErrNoSelection, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"server error", &plexsync.ServerError{StatusCode: 500, Path: "/status/sessions/history/all"}, http.StatusBadGateway, ErrCodeExternalServiceFail},
		{"unreachable", &plexsync.ServerError{StatusCode: 0, Err: errors.New("connection refused")}, http.StatusBadGateway, ErrCodeExternalServiceFail},
		{"decoding", fmt.Errorf("page 2: %w", plexsync.ErrDecoding), http.StatusBadGateway, ErrCodeExternalServiceFail},
		{"page limit", plexsync.ErrPageLimit, http.StatusBadGateway, ErrCodeExternalServiceFail},
		{"invalid request", plexsync.ErrInvalidRequest, http.StatusBadRequest, ErrCodeBadRequest},
		{"superseded", context.Canceled, http.StatusConflict, ErrCodeConflict},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{syncErr: tt.err}
			rec, env := doRequest(t, newTestRouter(t, store), http.MethodPost, "/api/v1/sync?wait=true")
			checkStatus(t, rec, tt.wantStatus)
			checkErrorCode(t, env, tt.wantCode)
		})
	}
}

func TestTriggerSync_ServerErrorDetails(t *testing.T) {
	store := &fakeStore{syncErr: &plexsync.ServerError{StatusCode: 401, Path: "/status/sessions/history/all"}}
	_, env := doRequest(t, newTestRouter(t, store), http.MethodPost, "/api/v1/sync?wait=true")

	details, ok := env.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details has type %T", env.Error.Details)
	}
	if details["error_type"] != "server_error" {
		t.Errorf("error_type = %v, want server_error", details["error_type"])
	}
	if details["status_code"] != float64(401) {
		t.Errorf("status_code = %v, want 401", details["status_code"])
	}
}

func TestTriggerSync_WaitSuccess(t *testing.T) {
	store := &fakeStore{status: history.Status{State: history.StateSynced, IsSynced: true, Sessions: 42}}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodPost, "/api/v1/sync?wait=true&since_year=2025&account_id=7")
	checkStatus(t, rec, http.StatusOK)

	var st history.Status
	decodeData(t, env, &st)
	if st.Sessions != 42 || st.State != history.StateSynced {
		t.Errorf("unexpected status body: %+v", st)
	}
	if len(store.syncCalls) != 1 {
		t.Fatalf("expected 1 sync, got %d", len(store.syncCalls))
	}
	if got := store.syncCalls[0]; got.SinceYear != 2025 || got.AccountID != 7 {
		t.Errorf("sync options = %+v, want since 2025 account 7", got)
	}
}

func TestTriggerSync_BackgroundUsesDefaults(t *testing.T) {
	store := &fakeStore{syncDone: make(chan struct{})}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodPost, "/api/v1/sync")
	checkStatus(t, rec, http.StatusAccepted)

	var body map[string]string
	decodeData(t, env, &body)
	if body["sync_id"] == "" {
		t.Error("expected sync_id in response")
	}

	select {
	case <-store.syncDone:
	case <-time.After(2 * time.Second):
		t.Fatal("background sync did not run")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if got := store.syncCalls[0]; got.SinceYear != 2024 || got.AccountID != 0 {
		t.Errorf("sync options = %+v, want configured defaults", got)
	}
}

func TestTriggerSync_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"non numeric year", "since_year=abc", ErrCodeBadRequest},
		{"year out of range", "since_year=1800", ErrCodeValidationFailed},
		{"negative account", "account_id=-1", ErrCodeValidationFailed},
		{"bad wait flag", "wait=maybe", ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			rec, env := doRequest(t, newTestRouter(t, store), http.MethodPost, "/api/v1/sync?"+tt.query)
			checkStatus(t, rec, http.StatusBadRequest)
			checkErrorCode(t, env, tt.wantCode)
			if len(store.syncCalls) != 0 {
				t.Error("invalid request must not start a sync")
			}
		})
	}
}

func TestSyncStatus(t *testing.T) {
	store := &fakeStore{status: history.Status{
		State:     history.StateFailed,
		LastError: "plex server error",
		ErrorKind: "server_error",
	}}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/sync/status")
	checkStatus(t, rec, http.StatusOK)

	var st history.Status
	decodeData(t, env, &st)
	if st.State != history.StateFailed || st.ErrorKind != "server_error" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestTopMedia_ParsesQuery(t *testing.T) {
	store := &fakeStore{top: []models.MediaStat{
		{ID: "1", Title: "A", MediaType: models.TypeMovie, ViewCount: 2},
		{ID: "9", Title: "S", MediaType: models.TypeShow, ViewCount: 1},
	}}
	rec, env := doRequest(t, newTestRouter(t, store),
		http.MethodGet, "/api/v1/stats/top?window=week&user=5&sort=watchTime&type=movie&limit=10&sessions=true")
	checkStatus(t, rec, http.StatusOK)

	want := stats.TopQuery{
		Window:          stats.WindowWeek,
		AccountID:       5,
		MediaType:       models.TypeMovie,
		Sort:            stats.SortWatchTime,
		Limit:           10,
		IncludeSessions: true,
	}
	if store.lastTop != want {
		t.Errorf("query = %+v, want %+v", store.lastTop, want)
	}

	var top []models.MediaStat
	decodeData(t, env, &top)
	if len(top) != 2 || top[0].ID != "1" {
		t.Errorf("unexpected top: %+v", top)
	}
	if env.Meta.Count == nil || *env.Meta.Count != 2 {
		t.Error("expected meta.count = 2")
	}
}

func TestTopMedia_Defaults(t *testing.T) {
	store := &fakeStore{}
	rec, _ := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/stats/top")
	checkStatus(t, rec, http.StatusOK)

	want := stats.TopQuery{Window: stats.WindowAllTime, Sort: stats.SortPlays}
	if store.lastTop != want {
		t.Errorf("query = %+v, want %+v", store.lastTop, want)
	}
}

func TestTopMedia_InvalidQuery(t *testing.T) {
	tests := []struct {
		query     string
		wantField string
	}{
		{"window=decade", "window"},
		{"sort=rating", "sort"},
		{"type=artist", "type"},
		{"limit=5000", "limit"},
		{"limit=-1", "limit"},
		{"user=-3", "user"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec, env := doRequest(t, newTestRouter(t, &fakeStore{}), http.MethodGet, "/api/v1/stats/top?"+tt.query)
			checkStatus(t, rec, http.StatusBadRequest)
			checkErrorCode(t, env, ErrCodeValidationFailed)

			details, ok := env.Error.Details.(map[string]interface{})
			if !ok || details["field"] != tt.wantField {
				t.Errorf("details = %v, want field %q", env.Error.Details, tt.wantField)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	store := &fakeStore{users: []models.UserStat{{AccountID: 1, Name: "alice", ViewCount: 3}}}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/stats/users?window=month&sort=watch_time")
	checkStatus(t, rec, http.StatusOK)

	if store.lastWindow != stats.WindowMonth || store.lastSort != stats.SortWatchTime {
		t.Errorf("window/sort = %q/%q", store.lastWindow, store.lastSort)
	}
	var users []models.UserStat
	decodeData(t, env, &users)
	if len(users) != 1 || users[0].Name != "alice" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestRewind(t *testing.T) {
	store := &fakeStore{}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/stats/rewind/2025?user=12")
	checkStatus(t, rec, http.StatusOK)

	if store.lastYear != 2025 || store.lastAccount != 12 {
		t.Errorf("rewind args = %d/%d, want 2025/12", store.lastYear, store.lastAccount)
	}
	var report models.RewindReport
	decodeData(t, env, &report)
	if report.Year != 2025 {
		t.Errorf("report year = %d", report.Year)
	}
}

func TestRewind_InvalidYear(t *testing.T) {
	for _, year := range []string{"abc", "1969", "10000"} {
		t.Run(year, func(t *testing.T) {
			rec, _ := doRequest(t, newTestRouter(t, &fakeStore{}), http.MethodGet, "/api/v1/stats/rewind/"+year)
			checkStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestMediaHistory(t *testing.T) {
	store := &fakeStore{sessions: []models.WatchSession{{HistoryKey: "h1", RatingKey: "202", Type: models.TypeEpisode}}}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/history/media/202?type=episode&grandparent=100")
	checkStatus(t, rec, http.StatusOK)

	if store.lastMediaArgs != [3]string{"202", "episode", "100"} {
		t.Errorf("args = %v", store.lastMediaArgs)
	}
	var sessions []models.WatchSession
	decodeData(t, env, &sessions)
	if len(sessions) != 1 || sessions[0].HistoryKey != "h1" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}

func TestMediaHistory_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{"missing type", "/api/v1/history/media/1", nil, http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown type", "/api/v1/history/media/1?type=track", nil, http.StatusBadRequest, ErrCodeValidationFailed},
		{"non numeric key", "/api/v1/history/media/abc?type=movie", nil, http.StatusBadRequest, ErrCodeValidationFailed},
		{"non numeric grandparent", "/api/v1/history/media/1?type=show&grandparent=x", nil, http.StatusBadRequest, ErrCodeValidationFailed},
		{"sync needed but unconfigured", "/api/v1/history/media/1?type=movie", plexsync.ErrNoSelection, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"sync needed but server failed", "/api/v1/history/media/1?type=movie", &plexsync.ServerError{StatusCode: 503}, http.StatusBadGateway, ErrCodeExternalServiceFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{mediaErr: tt.storeErr}
			rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, tt.target)
			checkStatus(t, rec, tt.wantStatus)
			checkErrorCode(t, env, tt.wantCode)
		})
	}
}

func TestUserHistory(t *testing.T) {
	store := &fakeStore{sessions: []models.WatchSession{{HistoryKey: "h9", AccountID: 42}}}
	rec, env := doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/history/users/42")
	checkStatus(t, rec, http.StatusOK)

	if store.lastUserLookup != 42 {
		t.Errorf("looked up account %d, want 42", store.lastUserLookup)
	}
	var sessions []models.WatchSession
	decodeData(t, env, &sessions)
	if len(sessions) != 1 || sessions[0].HistoryKey != "h9" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}

	rec, _ = doRequest(t, newTestRouter(t, store), http.MethodGet, "/api/v1/history/users/nope")
	checkStatus(t, rec, http.StatusBadRequest)
}
