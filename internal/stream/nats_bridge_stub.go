// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

//go:build !nats

package stream

import (
	"context"
	"fmt"

	"github.com/kardolabs/estatesync/internal/config"
)

// Bridge is a stub for builds without NATS support.
type Bridge struct{}

// NewBridge returns an error in non-NATS builds.
func NewBridge(_ *Hub, _ *config.NATSConfig) (*Bridge, error) {
	return nil, fmt.Errorf("NATS support not enabled (build with -tags nats)")
}

// Run returns an error in non-NATS builds.
func (b *Bridge) Run(_ context.Context) error {
	return fmt.Errorf("NATS support not enabled (build with -tags nats)")
}

// Close is a no-op stub.
func (b *Bridge) Close() error { return nil }
