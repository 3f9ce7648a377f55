// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package stream broadcasts catalog change events to connected viewers.
//
// The Hub is the single fan-out point: every successful catalog write
// publishes one event, and every connected viewer holds a Subscriber
// whose buffered channel the hub delivers into. Two transports drain
// subscribers: newline-delimited JSON over chunked HTTP (NDJSONHandler)
// and websocket (WebsocketHandler). Delivery is at-most-once with no
// replay, and a subscriber that cannot keep up is disconnected without
// affecting the others.
//
// Builds with the nats tag additionally get a Bridge that mirrors
// events between instances over NATS JetStream.
package stream
