// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package models defines the domain types shared across the application:
// listings, accounts, waves and wave permissions, inquiries, favorites,
// the standard API response envelope, and the stream event frames.
//
// Types here carry no behavior beyond validation-adjacent helpers (status
// transition checks, role capability checks). Persistence lives in
// internal/database, policy in internal/authz.
package models
