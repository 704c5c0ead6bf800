// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
plex.go - Plex Media Server API Client

This file provides the PlexClient and the wire types for the three Plex
endpoints Rewind reads.

PlexClient Features:
  - Connection resolved per request (ConnectionResolver), so an unconfigured
    server fails with ErrNoSelection before any network call
  - X-Plex-Token authentication (header and query parameter)
  - Request pacing with a shared rate.Limiter
  - HTTP 429 retry with exponential backoff and Retry-After support
  - Circuit breaker around every request (circuit_breaker.go)
  - Defensive JSON decoding: every scalar goes through models.FlexValue

API Methods in this file:
  - HistoryPage(): one page of /status/sessions/history/all
  - MetadataDuration(): duration of one item from /library/metadata/{ratingKey}
  - Accounts(): server accounts from /accounts

Related Files:
  - plex_request.go: HTTP request helpers and retry loop
  - circuit_breaker.go: gobreaker wrapper and metrics
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/models"
)

// HistoryPageSize is the number of records requested per history page.
const HistoryPageSize = 250

// ConnectionResolver supplies the server to talk to.
type ConnectionResolver interface {
	Connection(ctx context.Context) (models.Connection, error)
}

// StaticResolver resolves to a fixed connection.
type StaticResolver models.Connection

// Connection returns the configured connection or ErrNoSelection when the
// URL or token is empty.
func (r StaticResolver) Connection(context.Context) (models.Connection, error) {
	c := models.Connection(r)
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if !c.Valid() {
		return c, ErrNoSelection
	}
	return c, nil
}

// PlexClient handles communication with the Plex Media Server API.
type PlexClient struct {
	resolver       ConnectionResolver
	httpClient     *http.Client
	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[interface{}]
	cbName         string
	maxRetries     int
	retryBaseDelay time.Duration
}

// ClientOption customizes a PlexClient.
type ClientOption func(*PlexClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *PlexClient) { c.httpClient = hc }
}

// WithRateLimit sets request pacing. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *PlexClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryPolicy sets the 429 retry count and base backoff delay.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *PlexClient) {
		c.maxRetries = maxRetries
		c.retryBaseDelay = baseDelay
	}
}

// NewPlexClient creates a Plex API client.
//
// Defaults: 30 second HTTP timeout, 10 requests/second with burst 10,
// 5 retries on HTTP 429 starting at 1 second.
func NewPlexClient(resolver ConnectionResolver, opts ...ClientOption) *PlexClient {
	c := &PlexClient{
		resolver:       resolver,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(10, 10),
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cbName = "plex-api"
	c.cb = newCircuitBreaker(c.cbName)
	return c
}

// NewPlexClientFromConfig builds a client for the configured server.
func NewPlexClientFromConfig(cfg *config.PlexConfig) *PlexClient {
	return NewPlexClient(
		StaticResolver{BaseURL: cfg.URL, Token: cfg.Token},
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRateLimit(cfg.RequestsPerSecond, cfg.RateBurst),
	)
}

// Plex API Response Structures. Every scalar is a FlexValue because Plex
// versions disagree on whether ids and timestamps are strings or numbers.

type plexHistoryResponse struct {
	MediaContainer struct {
		Size      models.FlexValue   `json:"size"`
		TotalSize models.FlexValue   `json:"totalSize"`
		Metadata  []plexHistoryEntry `json:"Metadata"`
	} `json:"MediaContainer"`
}

type plexHistoryEntry struct {
	HistoryKey           models.FlexValue `json:"historyKey"`
	RatingKey            models.FlexValue `json:"ratingKey"`
	Key                  models.FlexValue `json:"key"`
	ParentRatingKey      models.FlexValue `json:"parentRatingKey"`
	GrandparentRatingKey models.FlexValue `json:"grandparentRatingKey"`
	GrandparentKey       models.FlexValue `json:"grandparentKey"`
	Type                 models.FlexValue `json:"type"`
	Title                models.FlexValue `json:"title"`
	GrandparentTitle     models.FlexValue `json:"grandparentTitle"`
	Thumb                models.FlexValue `json:"thumb"`
	GrandparentThumb     models.FlexValue `json:"grandparentThumb"`
	ParentIndex          models.FlexValue `json:"parentIndex"`
	Index                models.FlexValue `json:"index"`
	ViewedAt             models.FlexValue `json:"viewedAt"`
	Duration             models.FlexValue `json:"duration"`
	AccountID            models.FlexValue `json:"accountID"`
}

func (e *plexHistoryEntry) toSession() models.WatchSession {
	s := models.WatchSession{
		HistoryKey:           e.HistoryKey.AsID(),
		RatingKey:            e.RatingKey.AsID(),
		Key:                  e.Key.AsID(),
		ParentRatingKey:      e.ParentRatingKey.AsID(),
		GrandparentRatingKey: e.GrandparentRatingKey.AsID(),
		GrandparentKey:       e.GrandparentKey.AsID(),
		Type:                 e.Type.AsText(),
		Title:                e.Title.AsText(),
		GrandparentTitle:     e.GrandparentTitle.AsText(),
		Thumb:                e.Thumb.AsText(),
		GrandparentThumb:     e.GrandparentThumb.AsText(),
		ParentIndex:          e.ParentIndex.AsInt(),
		Index:                e.Index.AsInt(),
		ViewedAt:             e.ViewedAt.AsInt64(),
		Duration:             e.Duration.AsInt64(),
		AccountID:            e.AccountID.AsInt64(),
	}
	if s.Duration < 0 {
		s.Duration = 0
	}
	if s.HistoryKey == "" {
		s.HistoryKey = s.RatingKey + ":" + strconv.FormatInt(s.ViewedAt, 10)
	}
	return s
}

type plexMetadataResponse struct {
	MediaContainer struct {
		Metadata []struct {
			RatingKey models.FlexValue `json:"ratingKey"`
			Duration  models.FlexValue `json:"duration"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

type plexAccountsResponse struct {
	MediaContainer struct {
		Account []struct {
			ID   models.FlexValue `json:"id"`
			Name models.FlexValue `json:"name"`
		} `json:"Account"`
	} `json:"MediaContainer"`
}

// HistoryPage fetches one page of watch history, newest first.
// accountID > 0 restricts the page to that account.
func (c *PlexClient) HistoryPage(ctx context.Context, start, size int, accountID int64) ([]models.WatchSession, error) {
	query := url.Values{}
	query.Set("sort", "viewedAt:desc")
	if accountID > 0 {
		query.Set("accountID", strconv.FormatInt(accountID, 10))
	}

	var resp plexHistoryResponse
	err := c.doRequest(ctx, requestConfig{
		method:     http.MethodGet,
		path:       "/status/sessions/history/all",
		query:      query,
		acceptJSON: true,
		expectOK:   true,
		headers: map[string]string{
			"X-Plex-Container-Start": strconv.Itoa(start),
			"X-Plex-Container-Size":  strconv.Itoa(size),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	sessions := make([]models.WatchSession, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		sessions = append(sessions, resp.MediaContainer.Metadata[i].toSession())
	}
	return sessions, nil
}

// MetadataDuration returns the duration in milliseconds of one library item.
// A response without metadata or without a positive duration yields 0 and no error.
func (c *PlexClient) MetadataDuration(ctx context.Context, ratingKey string) (int64, error) {
	if ratingKey == "" || strings.ContainsAny(ratingKey, "/?#") {
		return 0, ErrInvalidRequest
	}

	var resp plexMetadataResponse
	if err := c.doJSONRequest(ctx, "/library/metadata/"+url.PathEscape(ratingKey), &resp); err != nil {
		return 0, err
	}
	if len(resp.MediaContainer.Metadata) == 0 {
		return 0, nil
	}
	d := resp.MediaContainer.Metadata[0].Duration.AsInt64()
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Accounts lists the server's accounts. The id 0 placeholder entry is skipped.
func (c *PlexClient) Accounts(ctx context.Context) ([]models.Account, error) {
	var resp plexAccountsResponse
	if err := c.doJSONRequest(ctx, "/accounts", &resp); err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(resp.MediaContainer.Account))
	for _, a := range resp.MediaContainer.Account {
		id := a.ID.AsInt64()
		if id <= 0 {
			continue
		}
		accounts = append(accounts, models.Account{ID: id, Name: a.Name.AsText()})
	}
	return accounts, nil
}

// ServerKey returns the resolved base URL, used as a cache key.
func (c *PlexClient) ServerKey(ctx context.Context) (string, error) {
	conn, err := c.resolver.Connection(ctx)
	if err != nil {
		return "", err
	}
	return conn.BaseURL, nil
}
