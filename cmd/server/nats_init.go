// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

//go:build nats

package main

import (
	"fmt"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/stream"
	"github.com/kardolabs/estatesync/internal/supervisor"
)

// initNATSBridge wires the cross-instance event bridge into the
// broadcast layer when NATS is enabled. The bridge relays locally
// published listing events to the configured subject and injects remote
// events into the hub.
func initNATSBridge(cfg *config.Config, hub *stream.Hub, tree *supervisor.Tree) error {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS bridge disabled (NATS_ENABLED=false)")
		return nil
	}

	bridge, err := stream.NewBridge(hub, &cfg.NATS)
	if err != nil {
		return fmt.Errorf("create NATS bridge: %w", err)
	}

	tree.AddBroadcastService(supervisor.NewNamedService("nats-bridge", bridge.Run))
	logging.Info().
		Str("url", cfg.NATS.URL).
		Str("subject", cfg.NATS.Subject).
		Msg("NATS bridge added to supervisor tree")
	return nil
}
