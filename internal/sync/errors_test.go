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
	"testing"
)

func TestServerError(t *testing.T) {
	tests := []struct {
		name      string
		err       *ServerError
		retryable bool
		notFound  bool
	}{
		{"unreachable", &ServerError{Path: "/", Err: errors.New("dial tcp: refused")}, true, false},
		{"not found", &ServerError{StatusCode: http.StatusNotFound, Path: "/library/metadata/1"}, false, true},
		{"unauthorized", &ServerError{StatusCode: http.StatusUnauthorized, Path: "/accounts"}, false, false},
		{"rate limited", &ServerError{StatusCode: http.StatusTooManyRequests, Path: "/"}, true, false},
		{"bad gateway", &ServerError{StatusCode: http.StatusBadGateway, Path: "/"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrServer) {
				t.Error("ServerError should match ErrServer")
			}
			if tt.err.Retryable() != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", tt.err.Retryable(), tt.retryable)
			}
			if tt.err.NotFound() != tt.notFound {
				t.Errorf("NotFound() = %v, want %v", tt.err.NotFound(), tt.notFound)
			}
			if tt.err.Error() == "" {
				t.Error("Error() should not be empty")
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{context.Canceled, "canceled"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "canceled"},
		{ErrNoSelection, "no_selection"},
		{fmt.Errorf("%w: /x", ErrInvalidRequest), "invalid_request"},
		{decodingError("/status/sessions/history/all", errors.New("eof")), "decoding_error"},
		{fmt.Errorf("%w: stopped", ErrPageLimit), "page_limit"},
		{fmt.Errorf("page 3: %w", &ServerError{StatusCode: 500}), "server_error"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
