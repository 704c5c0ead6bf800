// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest means a request could not be built (bad URL or parameters).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServer is matched by every *ServerError.
	ErrServer = errors.New("server error")

	// ErrDecoding means the server answered but the body could not be decoded.
	ErrDecoding = errors.New("decoding error")

	// ErrNoSelection means no server URL or token is configured.
	ErrNoSelection = errors.New("no media server selected")

	// ErrPageLimit means pagination hit the configured page ceiling.
	ErrPageLimit = errors.New("history page limit reached")
)

// ServerError is a non-success answer from the media server. StatusCode is
// zero when the server could not be reached at all.
type ServerError struct {
	StatusCode int
	Path       string
	Err        error
}

func (e *ServerError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("server error: %s: %v", e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("server error: %s returned %d: %v", e.Path, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("server error: %s returned %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Is makes errors.Is(err, ErrServer) true for any ServerError.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// NotFound reports a 404 answer.
func (e *ServerError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Retryable reports whether the failure is transient (unreachable, 5xx, 429).
func (e *ServerError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func decodingError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecoding, path, err)
}

// ErrorKind returns a short label for err, used for metrics and API error codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrNoSelection):
		return "no_selection"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrDecoding):
		return "decoding_error"
	case errors.Is(err, ErrPageLimit):
		return "page_limit"
	case errors.Is(err, ErrServer):
		return "server_error"
	default:
		return "other"
	}
}
