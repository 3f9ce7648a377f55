// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

//go:build nats

package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/models"
)

const (
	// originHeader carries the publishing instance ID so an instance can
	// tell its own messages apart from remote ones.
	originHeader = "origin"

	outboundBuffer = 256
)

// Bridge mirrors catalog change events between instances over NATS
// JetStream. Locally published events are relayed to the configured
// subject; events from other instances are injected into the local hub
// so every connected viewer sees the full change feed regardless of
// which instance served the write.
type Bridge struct {
	hub        *Hub
	cfg        *config.NATSConfig
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[any]
	instanceID string
	outbound   chan models.StreamEvent
	closeOnce  sync.Once
}

// NewBridge connects to NATS and prepares the publisher and subscriber.
// The bridge does nothing until Run is called.
func NewBridge(hub *Hub, cfg *config.NATSConfig) (*Bridge, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("nats bridge requires nats.enabled")
	}

	wmLogger := watermill.NewStdLogger(false, false)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Err(err).Msg("nats disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	// No queue group and no durable name: every instance must see every
	// message, and the feed is at-most-once so replay is pointless.
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Unmarshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision:    true,
			SubscribeOptions: []natsgo.SubOpt{natsgo.DeliverNew()},
		},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	b := &Bridge{
		hub:        hub,
		cfg:        cfg,
		publisher:  pub,
		subscriber: sub,
		instanceID: uuid.NewString(),
		outbound:   make(chan models.StreamEvent, outboundBuffer),
	}
	b.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "nats_publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return b, nil
}

// Run attaches the bridge to the hub and mirrors events in both
// directions until ctx is canceled. It returns ctx.Err() so a
// supervisor treats cancellation as a clean stop.
func (b *Bridge) Run(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, b.cfg.Subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.cfg.Subject, err)
	}

	b.hub.SetRelay(b.relayEvent)
	defer b.hub.SetRelay(nil)

	logging.Info().
		Str("subject", b.cfg.Subject).
		Str("instance_id", b.instanceID).
		Msg("nats bridge started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.forwardLoop(ctx)
	}()

	b.consumeLoop(ctx, messages)
	wg.Wait()

	logging.Info().Msg("nats bridge stopped")
	return ctx.Err()
}

// Close releases the NATS connections. Safe to call more than once.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if subErr := b.subscriber.Close(); subErr != nil {
			err = subErr
		}
		if pubErr := b.publisher.Close(); pubErr != nil && err == nil {
			err = pubErr
		}
	})
	return err
}

// relayEvent runs on the publishing goroutine, so it must never block.
func (b *Bridge) relayEvent(event models.StreamEvent) {
	select {
	case b.outbound <- event:
	default:
		logging.Warn().Str("event", event.Event).Msg("nats outbound queue full, dropping event")
	}
}

func (b *Bridge) forwardLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.outbound:
			if err := b.publish(event); err != nil {
				logging.Err(err).Str("event", event.Event).Msg("nats publish failed")
			}
		}
	}
}

func (b *Bridge) publish(event models.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(originHeader, b.instanceID)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	_, err = b.breaker.Execute(func() (any, error) {
		return nil, b.publisher.Publish(b.cfg.Subject, msg)
	})
	if err != nil {
		return err
	}

	metrics.NATSMessagesPublished.Inc()
	return nil
}

func (b *Bridge) consumeLoop(ctx context.Context, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handleMessage(msg)
		}
	}
}

// handleMessage acks unconditionally: a frame that cannot be decoded
// will not decode on redelivery either, and the feed is at-most-once.
func (b *Bridge) handleMessage(msg *message.Message) {
	defer msg.Ack()

	if msg.Metadata.Get(originHeader) == b.instanceID {
		return
	}

	var event models.StreamEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logging.Err(err).Str("message_uuid", msg.UUID).Msg("nats message decode failed")
		return
	}

	b.hub.InjectRemote(event)
	metrics.NATSMessagesConsumed.Inc()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
