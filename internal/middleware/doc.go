// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package middleware holds the transport-agnostic HTTP middleware:
// Prometheus request instrumentation and request-ID propagation. Rate
// limiting, CORS, and authentication middleware live with the router
// and auth packages that configure them.
package middleware
