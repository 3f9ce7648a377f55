// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package supervisor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kardolabs/estatesync/internal/logging"
)

//nolint:gochecknoinits // quiet logger for the whole package's tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// blockingService runs until its context is canceled and counts starts.
type blockingService struct {
	starts atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

// crashingService fails a fixed number of times before settling.
type crashingService struct {
	remaining atomic.Int32
	starts    atomic.Int32
}

func (s *crashingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.remaining.Add(-1) >= 0 {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestTreeServesAndStops(t *testing.T) {
	tree := NewTree(DefaultTreeConfig())
	svc := &blockingService{}
	tree.AddBroadcastService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return svc.starts.Load() == 1 })

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	tree := NewTree(cfg)

	svc := &crashingService{}
	svc.remaining.Store(2)
	tree.AddBroadcastService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return svc.starts.Load() >= 3 })

	cancel()
	<-errCh
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	}
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	// Binding the same port twice makes the second listener fail.
	first := &http.Server{Addr: "127.0.0.1:39741"}
	firstDone := make(chan error, 1)
	firstCtx, firstCancel := context.WithCancel(context.Background())
	defer firstCancel()
	go func() { firstDone <- NewHTTPServerService(first, time.Second).Serve(firstCtx) }()
	time.Sleep(50 * time.Millisecond)

	second := &http.Server{Addr: "127.0.0.1:39741"}
	err := NewHTTPServerService(second, time.Second).Serve(context.Background())
	if err == nil {
		t.Error("Serve() = nil, want listen error")
	}

	firstCancel()
	<-firstDone
}

func TestNamedServiceName(t *testing.T) {
	svc := NewNamedService("nats-bridge", func(ctx context.Context) error { return nil })
	if svc.String() != "nats-bridge" {
		t.Errorf("String() = %q, want nats-bridge", svc.String())
	}
	if err := svc.Serve(context.Background()); err != nil {
		t.Errorf("Serve() error = %v", err)
	}
}

func TestHubServiceDelegates(t *testing.T) {
	inner := &blockingService{}
	svc := NewHubService(inner)
	if svc.String() != "change-hub" {
		t.Errorf("String() = %q, want change-hub", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return inner.starts.Load() == 1 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
