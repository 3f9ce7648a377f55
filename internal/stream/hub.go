// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package stream

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/models"
)

// subscriberIDCounter generates unique, monotonically increasing IDs.
// Subscribers are sorted by ID during fan-out so delivery order is
// consistent across broadcasts within a process run.
var subscriberIDCounter atomic.Uint64

// Subscriber is one connected viewer. The transport goroutine drains the
// send channel; the hub closes it on deregister or when delivery stalls.
type Subscriber struct {
	id        uint64
	transport string
	send      chan models.StreamEvent
}

// NewSubscriber creates a subscriber for the named transport with the
// given send buffer.
func NewSubscriber(transport string, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 64
	}
	return &Subscriber{
		id:        subscriberIDCounter.Add(1),
		transport: transport,
		send:      make(chan models.StreamEvent, buffer),
	}
}

// Events returns the receive side of the subscriber's event channel. The
// channel is closed by the hub when the subscriber is dropped.
func (s *Subscriber) Events() <-chan models.StreamEvent {
	return s.send
}

// Hub fans catalog change events out to all connected subscribers.
// Delivery is at-most-once with no replay: a subscriber that connects
// after an event, or whose buffer is full when it fires, never sees it.
type Hub struct {
	subscribers map[*Subscriber]bool
	broadcast   chan models.StreamEvent
	Register    chan *Subscriber
	Unregister  chan *Subscriber
	mu          sync.RWMutex

	// relay, when set, receives every locally published event in addition
	// to the local fan-out. Used by the NATS bridge; events injected from
	// remote instances bypass it so they are never re-published.
	relayMu sync.RWMutex
	relay   func(models.StreamEvent)
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		broadcast:   make(chan models.StreamEvent, 256),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
	}
}

// Serve runs the hub until ctx is canceled. Designed for suture
// supervision: it returns ctx.Err() after closing every subscriber.
//
// Channel selection is prioritized: shutdown first, then subscriber
// lifecycle, then broadcasts. Go's select picks randomly among ready
// channels; the staged non-blocking checks keep the subscriber set
// consistent before any fan-out.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case sub := <-h.Register:
			h.register(sub)
			continue
		case sub := <-h.Unregister:
			h.unregister(sub)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case sub := <-h.Register:
			h.register(sub)
		case sub := <-h.Unregister:
			h.unregister(sub)
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

func (h *Hub) register(sub *Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = true
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.StreamSubscribers.WithLabelValues(sub.transport).Inc()
	logging.Info().
		Str("transport", sub.transport).
		Int("total_subscribers", count).
		Msg("stream subscriber connected")
}

func (h *Hub) unregister(sub *Subscriber) {
	h.mu.Lock()
	removed := false
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
		removed = true
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if removed {
		metrics.StreamSubscribers.WithLabelValues(sub.transport).Dec()
		logging.Info().
			Str("transport", sub.transport).
			Int("total_subscribers", count).
			Msg("stream subscriber disconnected")
	}
}

// fanOut delivers one event to every subscriber in ID order. A
// subscriber whose buffer is full is dropped on the spot; the others are
// unaffected.
func (h *Hub) fanOut(event models.StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].id < subs[j].id
	})

	delivered := 0
	var toRemove []*Subscriber
	for _, sub := range subs {
		select {
		case sub.send <- event:
			delivered++
		default:
			toRemove = append(toRemove, sub)
		}
	}

	for _, sub := range toRemove {
		close(sub.send)
		delete(h.subscribers, sub)
		metrics.StreamSubscribers.WithLabelValues(sub.transport).Dec()
		metrics.StreamSubscribersDropped.Inc()
		logging.Warn().
			Str("transport", sub.transport).
			Msg("dropped slow stream subscriber")
	}

	metrics.RecordBroadcast(event.Event, delivered)
}

// shutdown closes every subscriber and logs the reason. Context
// cancellation is the expected stop path, so it is not logged as an
// error.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].id < subs[j].id
	})
	for _, sub := range subs {
		close(sub.send)
		delete(h.subscribers, sub)
		metrics.StreamSubscribers.WithLabelValues(sub.transport).Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "stream-hub").
		Str("reason", reason).
		Int("subscribers_closed", len(subs)).
		Msg("stream hub stopped")
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish queues an event for fan-out. If the hub's queue is full the
// event is dropped; delivery is at-most-once by contract.
func (h *Hub) Publish(event models.StreamEvent) {
	h.enqueue(event)

	h.relayMu.RLock()
	relay := h.relay
	h.relayMu.RUnlock()
	if relay != nil {
		relay(event)
	}
}

// SetRelay installs the cross-instance relay hook. Pass nil to detach.
func (h *Hub) SetRelay(fn func(models.StreamEvent)) {
	h.relayMu.Lock()
	h.relay = fn
	h.relayMu.Unlock()
}

// InjectRemote queues an event received from another instance for local
// fan-out only. It never triggers the relay hook.
func (h *Hub) InjectRemote(event models.StreamEvent) {
	h.enqueue(event)
}

func (h *Hub) enqueue(event models.StreamEvent) {
	select {
	case h.broadcast <- event:
	default:
		logging.Warn().Str("event", event.Event).Msg("broadcast queue full, dropping event")
	}
}

// PublishCreated announces a newly created listing.
func (h *Hub) PublishCreated(listing *models.Listing) {
	h.Publish(models.NewStreamEvent(models.EventPropertyCreated, listing))
}

// PublishUpdated announces an updated listing.
func (h *Hub) PublishUpdated(listing *models.Listing) {
	h.Publish(models.NewStreamEvent(models.EventPropertyUpdated, listing))
}

// PublishDeleted announces a deleted listing by ID.
func (h *Hub) PublishDeleted(id string) {
	h.Publish(models.NewStreamEvent(models.EventPropertyDeleted, models.DeletedData{ID: id}))
}

// PublishCleared announces a bulk catalog clear with the removed count.
func (h *Hub) PublishCleared(count int64) {
	h.Publish(models.NewStreamEvent(models.EventPropertiesCleared, models.ClearedData{Count: count}))
}
