// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

//go:build !nats

package main

import (
	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/stream"
	"github.com/kardolabs/estatesync/internal/supervisor"
)

// initNATSBridge is a no-op in builds without the nats tag. Enabling
// NATS in configuration without the tag logs a warning instead of
// failing startup.
func initNATSBridge(cfg *config.Config, _ *stream.Hub, _ *supervisor.Tree) error {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS is enabled in configuration but this binary was built without -tags nats")
	}
	return nil
}
