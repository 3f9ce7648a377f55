// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package metrics provides Prometheus instrumentation for the catalog:
// API latency and throughput, search query timings, quota ledger
// outcomes, and event stream fan-out counters. All collectors are
// registered at package load via promauto and exposed on /metrics.
package metrics
