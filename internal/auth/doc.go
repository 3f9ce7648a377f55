// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package auth is the narrow authentication contract: a verified bearer
// token becomes an Actor carrying the account ID, role, allowed
// languages, and the account's validity window. Session issuance, login
// flows, and password handling are external collaborators and do not
// live in this repository.
package auth
