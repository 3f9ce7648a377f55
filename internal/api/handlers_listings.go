// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/authz"
	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/models"
)

// featuredCacheTTL bounds staleness of the featured list. The catalog
// changes slowly relative to how often landing pages fetch it.
const featuredCacheTTL = 30 * time.Second

// defaultFeaturedLimit is the featured list size when no limit is given.
const defaultFeaturedLimit = 6

// handleSearchListings is GET /api/v1/properties: the catalog query with
// filtering, sorting and pagination. Responses carry an ETag.
func (rt *Router) handleSearchListings(w http.ResponseWriter, r *http.Request) {
	filter := parseListingFilter(w, r)
	if filter == nil {
		return
	}

	start := time.Now()
	page, err := rt.db.SearchListings(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	metrics.RecordSearch(time.Since(start))

	respondCacheable(w, r, "search", page, start, false)
}

// handleFeaturedListings is GET /api/v1/properties/featured: the most
// viewed active listings, served from a short-lived cache.
func (rt *Router) handleFeaturedListings(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeaturedLimit
	if n, ok := parseIntParam(w, r.URL.Query(), "limit"); !ok {
		return
	} else if n != nil && *n > 0 && *n <= database.MaxLimit {
		limit = *n
	}

	start := time.Now()
	key := fmt.Sprintf("featured:%d", limit)
	if cached, ok := rt.featured.Get(key); ok {
		if listings, ok := cached.([]models.Listing); ok {
			respondCacheable(w, r, "featured", listings, start, true)
			return
		}
	}

	listings, err := rt.db.GetFeaturedListings(r.Context(), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	rt.featured.Set(key, listings)

	respondCacheable(w, r, "featured", listings, start, false)
}

// handleGetListing is GET /api/v1/properties/{id}. Fetching a listing
// counts as a view; the increment is best-effort and never fails the
// read.
func (rt *Router) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	listing, err := rt.db.GetListing(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if err := rt.db.IncrementListingViews(r.Context(), id); err != nil {
		logging.Warn().Err(err).Str("listing_id", id.String()).Msg("failed to increment views")
	} else {
		listing.Views++
	}

	respondSuccess(w, listing)
}

// handleCreateListing is POST /api/v1/properties. Creation passes four
// gates in order: authentication, role capability, language permission,
// and wave quota. Quota is reserved last so a request failing an earlier
// gate never consumes a slot.
func (rt *Router) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Price.IsPositive() {
		respondFieldError(w, "price", "must be a positive number")
		return
	}

	if !rt.requireCapability(w, actor, authz.ObjectListings, authz.ActionCreate) {
		return
	}

	if !rt.authz.MayWriteLanguage(actor.Role, actor.Languages, req.Language) {
		respondError(w, http.StatusForbidden, models.ErrCodeLanguageNotPermitted,
			"account may not publish in this language", map[string]interface{}{
				"language": req.Language,
			})
		return
	}

	var reservedWave uuid.UUID
	if !actor.Privileged() {
		if req.WaveID == "" {
			respondFieldError(w, "waveId", "is required")
			return
		}
		waveID := uuid.MustParse(req.WaveID) // format enforced by validation

		if err := rt.ledger.Reserve(r.Context(), actor.AccountID, waveID); err != nil {
			switch {
			case errors.Is(err, database.ErrQuotaExceeded), errors.Is(err, database.ErrNotFound):
				respondError(w, http.StatusForbidden, models.ErrCodeQuotaExceeded,
					"no publishing capacity on this wave", map[string]interface{}{
						"wave_id": waveID.String(),
					})
			default:
				respondStoreError(w, err)
			}
			return
		}
		reservedWave = waveID
	}

	listing := &models.Listing{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.ListingType(req.Type),
		OfferType:   models.OfferType(req.OfferType),
		Price:       req.Price,
		Currency:    req.Currency,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Images:      req.Images,
		Amenities:   req.Amenities,
		Features:    req.Features,
		Language:    req.Language,
		AccountID:   actor.AccountID,
	}

	if err := rt.db.CreateListing(r.Context(), listing); err != nil {
		// The listing never landed, so hand the reserved slot back.
		if reservedWave != uuid.Nil {
			if relErr := rt.ledger.Release(r.Context(), actor.AccountID, reservedWave); relErr != nil {
				logging.Error().Err(relErr).
					Str("account_id", actor.AccountID.String()).
					Str("wave_id", reservedWave.String()).
					Msg("failed to release wave slot after failed create")
			}
		}
		respondStoreError(w, err)
		return
	}

	metrics.ListingsCreated.Inc()
	rt.featured.Clear()
	rt.hub.PublishCreated(listing)
	respondCreated(w, listing)
}

// handleUpdateListing is PUT /api/v1/properties/{id}. Owner or elevated
// role; status changes follow the listing transition table; language
// changes re-check the language grant. Concurrent updates are
// last-write-wins.
func (rt *Router) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		respondFieldError(w, "price", "must be a positive number")
		return
	}

	listing, err := rt.db.GetListing(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !rt.authz.CanModifyListing(actor.AccountID, actor.Role, listing) {
		respondRoleDenied(w)
		return
	}

	if req.Status != nil {
		next := models.ListingStatus(*req.Status)
		if !models.CanTransitionStatus(listing.Status, next) {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
				"illegal status transition", map[string]interface{}{
					"from": string(listing.Status),
					"to":   string(next),
				})
			return
		}
		listing.Status = next
	}

	if req.Language != nil && *req.Language != listing.Language {
		if !rt.authz.MayWriteLanguage(actor.Role, actor.Languages, *req.Language) {
			respondError(w, http.StatusForbidden, models.ErrCodeLanguageNotPermitted,
				"account may not publish in this language", map[string]interface{}{
					"language": *req.Language,
				})
			return
		}
		listing.Language = *req.Language
	}

	applyListingUpdate(listing, &req)

	if err := rt.db.UpdateListing(r.Context(), listing); err != nil {
		respondStoreError(w, err)
		return
	}

	rt.featured.Clear()
	rt.hub.PublishUpdated(listing)
	respondSuccess(w, listing)
}

// applyListingUpdate copies the present fields of req onto listing.
// Status and language are handled by the caller because they carry their
// own checks.
func applyListingUpdate(listing *models.Listing, req *UpdateListingRequest) {
	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Type != nil {
		listing.Type = models.ListingType(*req.Type)
	}
	if req.OfferType != nil {
		listing.OfferType = models.OfferType(*req.OfferType)
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Currency != nil {
		listing.Currency = *req.Currency
	}
	if req.Bedrooms != nil {
		listing.Bedrooms = req.Bedrooms
	}
	if req.Bathrooms != nil {
		listing.Bathrooms = req.Bathrooms
	}
	if req.Area != nil {
		listing.Area = *req.Area
	}
	if req.Address != nil {
		listing.Address = *req.Address
	}
	if req.City != nil {
		listing.City = *req.City
	}
	if req.Country != nil {
		listing.Country = *req.Country
	}
	if req.Latitude != nil {
		listing.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		listing.Longitude = req.Longitude
	}
	if req.Images != nil {
		listing.Images = req.Images
	}
	if req.Amenities != nil {
		listing.Amenities = req.Amenities
	}
	if req.Features != nil {
		listing.Features = req.Features
	}
}

// handleDeleteListing is DELETE /api/v1/properties/{id}. Owner or
// privileged role; the store cascades favorites and inquiries.
func (rt *Router) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	listing, err := rt.db.GetListing(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !rt.authz.CanModifyListing(actor.AccountID, actor.Role, listing) {
		respondRoleDenied(w)
		return
	}

	if err := rt.db.DeleteListing(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	metrics.ListingsDeleted.Inc()
	rt.featured.Clear()
	rt.hub.PublishDeleted(id.String())
	respondSuccess(w, models.DeletedData{ID: id.String()})
}

// handleClearListings is DELETE /api/v1/properties: the privileged bulk
// clear. It sits in the heavy bucket.
func (rt *Router) handleClearListings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectListings, authz.ActionClear) {
		return
	}

	count, err := rt.db.ClearListings(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Info().Int64("count", count).Str("account_id", actor.AccountID.String()).Msg("catalog cleared")
	rt.featured.Clear()
	rt.hub.PublishCleared(count)
	respondSuccess(w, models.ClearedData{Count: count})
}

// pathUUID parses a UUID path parameter, answering 400 on bad input.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondFieldError(w, name, "must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
