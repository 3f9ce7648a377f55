// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"net/http"
	"time"

	"github.com/kardolabs/estatesync/internal/models"
)

// handleListFavorites is GET /api/v1/favorites: the caller's bookmarked
// listings, most recently favorited first.
func (rt *Router) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	listings, err := rt.db.ListFavoriteListings(r.Context(), actor.AccountID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, listings)
}

// handleAddFavorite is PUT /api/v1/favorites/{listingID}. The operation
// is idempotent: re-adding an existing favorite succeeds without change.
func (rt *Router) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	listingID, ok := pathUUID(w, r, "listingID")
	if !ok {
		return
	}

	if err := rt.db.AddFavorite(r.Context(), actor.AccountID, listingID); err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, models.Favorite{
		AccountID: actor.AccountID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	})
}

// handleRemoveFavorite is DELETE /api/v1/favorites/{listingID}. Removing
// a favorite that was never added is 404.
func (rt *Router) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	listingID, ok := pathUUID(w, r, "listingID")
	if !ok {
		return
	}

	if err := rt.db.RemoveFavorite(r.Context(), actor.AccountID, listingID); err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, models.DeletedData{ID: listingID.String()})
}
