// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"
)

// Stream event names. Every frame on a viewer connection carries exactly
// one of these in its "event" field. The field is named "event", not
// "type", so it can never be confused with a listing's own property type.
const (
	EventConnected         = "connected"
	EventHeartbeat         = "heartbeat"
	EventPropertyCreated   = "property_created"
	EventPropertyUpdated   = "property_updated"
	EventPropertyDeleted   = "property_deleted"
	EventPropertiesCleared = "properties_cleared"
)

// StreamEvent is one frame of the viewer event stream. On the NDJSON
// transport it is written as a single line of JSON; on the websocket
// transport as one text message.
//
// Padding is set only on the initial connected frame of buffering-prone
// transports, forcing intermediary proxies to flush. It carries no
// information.
type StreamEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"ts"`
	Padding   string      `json:"padding,omitempty"`
}

// NewStreamEvent builds a frame stamped with the current UTC time.
func NewStreamEvent(event string, data interface{}) StreamEvent {
	return StreamEvent{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// DeletedData is the payload of a property_deleted event.
type DeletedData struct {
	ID string `json:"id"`
}

// ClearedData is the payload of a properties_cleared event.
type ClearedData struct {
	Count int64 `json:"count"`
}
