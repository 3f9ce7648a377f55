// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package supervisor runs the server's long-lived components under a
// suture supervision tree: the change hub and optional NATS bridge in
// one layer, the HTTP server in another. A crashing component is
// restarted with exponential backoff instead of taking the process
// down, and supervisor events are logged through sutureslog.
package supervisor
