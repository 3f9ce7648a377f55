// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub starts a hub and stops it when the test ends.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(10 * time.Millisecond)
	return hub
}

func registerSubscriber(hub *Hub, sub *Subscriber) {
	hub.Register <- sub
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	checks := []struct {
		check  bool
		errMsg string
	}{
		{hub.subscribers != nil, "subscribers map not initialized"},
		{hub.broadcast != nil, "broadcast channel not initialized"},
		{hub.Register != nil, "Register channel not initialized"},
		{hub.Unregister != nil, "Unregister channel not initialized"},
		{hub.SubscriberCount() == 0, "subscriber count should start at zero"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestSubscriberLifecycle(t *testing.T) {
	hub := setupHub(t)
	sub := NewSubscriber(transportNDJSON, 8)
	registerSubscriber(hub, sub)

	if got := hub.SubscriberCount(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	hub.Unregister <- sub
	time.Sleep(20 * time.Millisecond)

	if got := hub.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers after unregister, got %d", got)
	}
	if _, ok := <-sub.Events(); ok {
		t.Error("events channel should be closed after unregister")
	}
}

func TestUnregisterUnknownSubscriber(t *testing.T) {
	hub := setupHub(t)

	hub.Unregister <- NewSubscriber(transportWebsocket, 8)
	time.Sleep(20 * time.Millisecond)

	if got := hub.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}
}

func TestFanOutDeliversToAll(t *testing.T) {
	hub := setupHub(t)

	const numSubs = 3
	subs := make([]*Subscriber, numSubs)
	for i := range subs {
		subs[i] = NewSubscriber(transportNDJSON, 8)
		registerSubscriber(hub, subs[i])
	}

	hub.PublishCreated(&models.Listing{ID: uuid.New(), Title: "Riverside villa"})

	for i, sub := range subs {
		select {
		case event := <-sub.Events():
			if event.Event != models.EventPropertyCreated {
				t.Errorf("subscriber %d: expected %q, got %q", i, models.EventPropertyCreated, event.Event)
			}
		case <-time.After(500 * time.Millisecond):
			t.Errorf("subscriber %d did not receive broadcast", i)
		}
	}
}

// A subscriber whose buffer is full gets disconnected; everyone else
// keeps receiving.
func TestSlowSubscriberDropped(t *testing.T) {
	hub := setupHub(t)

	slow := NewSubscriber(transportNDJSON, 1)
	healthy := NewSubscriber(transportNDJSON, 8)
	registerSubscriber(hub, slow)
	registerSubscriber(hub, healthy)

	// First event fills the slow subscriber's buffer, second one finds
	// it full and drops the subscriber.
	hub.PublishDeleted(uuid.NewString())
	hub.PublishDeleted(uuid.NewString())
	time.Sleep(50 * time.Millisecond)

	if got := hub.SubscriberCount(); got != 1 {
		t.Fatalf("expected 1 subscriber after drop, got %d", got)
	}

	received := 0
	for i := 0; i < 2; i++ {
		select {
		case event, ok := <-healthy.Events():
			if !ok {
				t.Fatal("healthy subscriber must not be closed")
			}
			if event.Event != models.EventPropertyDeleted {
				t.Errorf("expected %q, got %q", models.EventPropertyDeleted, event.Event)
			}
			received++
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("healthy subscriber received %d of 2 events", received)
		}
	}

	// The slow subscriber keeps its one buffered event, then the closed
	// channel.
	if event, ok := <-slow.Events(); !ok || event.Event != models.EventPropertyDeleted {
		t.Errorf("slow subscriber should still drain its buffered event, ok=%v", ok)
	}
	if _, ok := <-slow.Events(); ok {
		t.Error("slow subscriber channel should be closed after drop")
	}
}

// Events published before a subscriber connects are never replayed.
func TestNoReplayForLateSubscriber(t *testing.T) {
	hub := setupHub(t)

	hub.PublishCleared(7)
	time.Sleep(20 * time.Millisecond)

	late := NewSubscriber(transportNDJSON, 8)
	registerSubscriber(hub, late)

	select {
	case event := <-late.Events():
		t.Errorf("late subscriber must not receive earlier events, got %q", event.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestServeClosesSubscribersOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.Serve(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	sub := NewSubscriber(transportWebsocket, 8)
	registerSubscriber(hub, sub)

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if _, ok := <-sub.Events(); ok {
		t.Error("subscriber channel should be closed on shutdown")
	}
	if got := hub.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers after shutdown, got %d", got)
	}
}

func TestPublishHelperPayloads(t *testing.T) {
	hub := setupHub(t)
	sub := NewSubscriber(transportNDJSON, 8)
	registerSubscriber(hub, sub)

	id := uuid.NewString()
	hub.PublishDeleted(id)
	hub.PublishCleared(42)

	deleted := <-sub.Events()
	if deleted.Event != models.EventPropertyDeleted {
		t.Fatalf("expected %q, got %q", models.EventPropertyDeleted, deleted.Event)
	}
	if data, ok := deleted.Data.(models.DeletedData); !ok || data.ID != id {
		t.Errorf("deleted payload mismatch: %#v", deleted.Data)
	}

	cleared := <-sub.Events()
	if cleared.Event != models.EventPropertiesCleared {
		t.Fatalf("expected %q, got %q", models.EventPropertiesCleared, cleared.Event)
	}
	if data, ok := cleared.Data.(models.ClearedData); !ok || data.Count != 42 {
		t.Errorf("cleared payload mismatch: %#v", cleared.Data)
	}
}

func TestRelayReceivesLocalEventsOnly(t *testing.T) {
	hub := setupHub(t)
	sub := NewSubscriber(transportNDJSON, 8)
	registerSubscriber(hub, sub)

	var mu sync.Mutex
	var relayed []string
	hub.SetRelay(func(event models.StreamEvent) {
		mu.Lock()
		relayed = append(relayed, event.Event)
		mu.Unlock()
	})
	defer hub.SetRelay(nil)

	hub.PublishDeleted(uuid.NewString())
	hub.InjectRemote(models.NewStreamEvent(models.EventPropertyCreated, nil))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	if len(relayed) != 1 || relayed[0] != models.EventPropertyDeleted {
		t.Errorf("relay should see only the local event, got %v", relayed)
	}
	mu.Unlock()

	// Both events still reach local subscribers.
	for _, want := range []string{models.EventPropertyDeleted, models.EventPropertyCreated} {
		select {
		case event := <-sub.Events():
			if event.Event != want {
				t.Errorf("expected %q, got %q", want, event.Event)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("subscriber did not receive %q", want)
		}
	}
}

func TestConcurrentRegistrationAndBroadcast(t *testing.T) {
	hub := setupHub(t)
	done := make(chan bool)

	go func() {
		for i := 0; i < 10; i++ {
			registerSubscriber(hub, NewSubscriber(transportNDJSON, 64))
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 10; i++ {
			hub.PublishCleared(1)
			time.Sleep(5 * time.Millisecond)
		}
		done <- true
	}()

	timeout := time.After(5 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("concurrent operations timed out")
		}
	}

	if got := hub.SubscriberCount(); got != 10 {
		t.Errorf("expected 10 subscribers, got %d", got)
	}
}
