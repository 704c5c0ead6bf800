// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
plex_request.go - Plex HTTP Request Helpers

Request Configuration:
  - Authentication: X-Plex-Token header and query parameter
  - JSON Accept: Optional Accept: application/json header
  - Status Validation: Non-2xx becomes *ServerError
  - Rate Limiting: limiter wait before every attempt, retry on HTTP 429

Error mapping:
  - URL cannot be built: ErrInvalidRequest
  - transport failure: *ServerError with StatusCode 0
  - non-success status: *ServerError with the status code
  - body cannot be decoded: ErrDecoding
  - context cancelled: the context error, unwrapped
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rewind/internal/logging"
)

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method     string
	path       string
	query      url.Values
	headers    map[string]string
	acceptJSON bool
	expectOK   bool // if true, anything but 200 is a ServerError
}

// doRequest executes a Plex API request through the circuit breaker and decodes the response
func (c *PlexClient) doRequest(ctx context.Context, cfg requestConfig, result interface{}) error {
	conn, err := c.resolver.Connection(ctx)
	if err != nil {
		return err
	}

	return c.execute(ctx, func() error {
		return c.doRequestOnce(ctx, conn.BaseURL, conn.Token, cfg, result)
	})
}

func (c *PlexClient) doRequestOnce(ctx context.Context, baseURL, token string, cfg requestConfig, result interface{}) error {
	reqURL, err := url.Parse(baseURL + cfg.path)
	if err != nil || reqURL.Scheme == "" || reqURL.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, cfg.path)
	}

	query := url.Values{}
	for k, v := range cfg.query {
		query[k] = v
	}
	query.Set("X-Plex-Token", token)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	req.Header.Set("X-Plex-Token", token)
	if cfg.acceptJSON {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range cfg.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.doRequestWithRateLimit(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var se *ServerError
		if errors.As(err, &se) {
			return err
		}
		return &ServerError{Path: cfg.path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (cfg.expectOK && resp.StatusCode != http.StatusOK) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &ServerError{StatusCode: resp.StatusCode, Path: cfg.path}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return decodingError(cfg.path, err)
		}
	}

	return nil
}

// doJSONRequest is a convenience wrapper for JSON GET requests
func (c *PlexClient) doJSONRequest(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, requestConfig{
		method:     http.MethodGet,
		path:       path,
		acceptJSON: true,
		expectOK:   true,
	}, result)
}

// doRequestWithRateLimit executes an HTTP request, pacing it with the client
// limiter and retrying on HTTP 429.
//
//   - Exponential backoff: base, 2x, 4x, ... up to maxRetries attempts
//   - Respects Retry-After header (RFC 6585) if present
//   - Only retries on HTTP 429 (Too Many Requests)
func (c *PlexClient) doRequestWithRateLimit(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, &ServerError{
				StatusCode: http.StatusTooManyRequests,
				Path:       req.URL.Path,
				Err:        fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries),
			}
		}

		retryDelay := c.retryBaseDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				retryDelay = time.Duration(seconds) * time.Second
			}
		}

		logging.Ctx(ctx).Warn().
			Dur("retry_delay", retryDelay).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Str("path", req.URL.Path).
			Msg("Plex API rate limited (HTTP 429), retrying")

		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("unreachable code: retry loop should return or error")
}
