// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package authz decides what an authenticated actor may do.
//
// The capability table is a declarative (role, object, action) Casbin
// policy with a role hierarchy (customer < agent < admin < super-admin),
// embedded in the binary. Handlers ask one question per gated operation
// instead of repeating role-set checks per route. Ownership ("may this
// actor touch this particular listing") and the language allow-list are
// stateless checks layered on top by the Service.
package authz
