// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeServer blocks in ListenAndServe until Shutdown, like *http.Server.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	listening chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	listens   atomic.Int32
	shutdowns atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		listening: make(chan struct{}, 8),
		closed:    make(chan struct{}),
	}
}

func (s *fakeServer) ListenAndServe() error {
	s.listens.Add(1)
	select {
	case s.listening <- struct{}{}:
	default:
	}
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.closed
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	s.closeOnce.Do(func() { close(s.closed) })
	return s.shutdownErr
}

func (s *fakeServer) waitListening(t *testing.T) {
	t.Helper()
	select {
	case <-s.listening:
	case <-time.After(2 * time.Second):
		t.Fatal("server never started listening")
	}
}

type baseContextRecorder struct {
	ctx atomic.Value
}

func (r *baseContextRecorder) SetBaseContext(ctx context.Context) {
	r.ctx.Store(ctx)
}

func serveAsync(ctx context.Context, svc suture.Service) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return errCh
}

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
		{3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService(newFakeServer(), tt.in, nil)
		if svc.shutdownTimeout != tt.want {
			t.Errorf("timeout(%v) = %v, want %v", tt.in, svc.shutdownTimeout, tt.want)
		}
	}
	if got := NewHTTPServerService(newFakeServer(), 0, nil).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newFakeServer()
	recorder := &baseContextRecorder{}
	svc := NewHTTPServerService(server, time.Second, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	server.waitListening(t)

	base, ok := recorder.ctx.Load().(context.Context)
	if !ok {
		t.Fatal("handler did not receive the service context")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if server.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns.Load())
	}
	if base.Err() == nil {
		t.Error("background syncs should see the service context end")
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	bindErr := errors.New("listen tcp :3858: bind: address already in use")
	server := newFakeServer()
	server.listenErr = bindErr

	err := NewHTTPServerService(server, time.Second, nil).Serve(context.Background())
	if !errors.Is(err, bindErr) {
		t.Fatalf("Serve() = %v, want wrapped bind error", err)
	}
	if server.shutdowns.Load() != 0 {
		t.Error("Shutdown should not run when listening failed")
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	shutdownErr := errors.New("context deadline exceeded while draining")
	server := newFakeServer()
	server.shutdownErr = shutdownErr
	svc := NewHTTPServerService(server, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	server.waitListening(t)
	cancel()

	if err := <-errCh; !errors.Is(err, shutdownErr) {
		t.Errorf("Serve() = %v, want shutdown error", err)
	}
}

func TestHTTPServerService_RestartedBySupervisor(t *testing.T) {
	server := newFakeServer()
	server.listenErr = errors.New("transient bind failure")
	svc := NewHTTPServerService(server, time.Second, nil)

	sup := suture.New("api-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	done := sup.ServeBackground(ctx)

	server.waitListening(t)
	server.waitListening(t)

	cancel()
	<-done
	if server.listens.Load() < 2 {
		t.Errorf("ListenAndServe ran %d times, want a restart", server.listens.Load())
	}
}
