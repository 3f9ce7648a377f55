// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

// Actor is the authenticated identity a request acts as. Token issuance
// is an external collaborator's job; this is everything the catalog
// needs to authorize a request.
type Actor struct {
	AccountID uuid.UUID
	Role      models.Role
	Languages []string
	ExpiresAt *time.Time
}

// Expired reports whether the actor's account validity window has passed.
func (a *Actor) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// Privileged reports whether the actor holds an administrative role.
func (a *Actor) Privileged() bool {
	return a.Role.IsPrivileged()
}

type contextKey struct{}

// WithActor attaches the actor to the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFrom extracts the actor placed by the middleware. The second
// return is false for unauthenticated requests.
func ActorFrom(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(*Actor)
	return actor, ok
}
