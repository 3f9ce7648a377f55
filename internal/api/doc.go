// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package api is the HTTP surface of the catalog server: a chi router
// with per-group rate-limit buckets, bearer-token authentication, the
// standardized response envelope, and handlers for listings, inquiries,
// favorites, waves and wave permissions.
//
// Read-mostly endpoints (catalog query, featured) carry an ETag computed
// over the payload; an If-None-Match revalidation hit is answered with
// 304 and an empty body. All successful writes publish the matching
// change event through the stream hub.
package api
