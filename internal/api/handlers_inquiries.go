// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"net/http"

	"github.com/kardolabs/estatesync/internal/models"
)

// handleCreateInquiry is POST /api/v1/properties/{id}/inquiries. The
// contact form is public: prospective buyers hold no account. New
// inquiries always start pending regardless of the payload.
func (rt *Router) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req CreateInquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Phone == "" && req.Email == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"either phone or email is required", nil)
		return
	}

	inquiry := &models.Inquiry{
		ListingID: listingID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Message:   req.Message,
	}

	if err := rt.db.CreateInquiry(r.Context(), inquiry); err != nil {
		respondStoreError(w, err)
		return
	}

	respondCreated(w, inquiry)
}

// handleListInquiries is GET /api/v1/properties/{id}/inquiries. Only the
// listing owner or a privileged role may read the contact records; they
// carry personal data.
func (rt *Router) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	listingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	listing, err := rt.db.GetListing(r.Context(), listingID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !rt.authz.CanModifyListing(actor.AccountID, actor.Role, listing) {
		respondRoleDenied(w)
		return
	}

	inquiries, err := rt.db.ListInquiries(r.Context(), listingID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, inquiries)
}

// handleUpdateInquiry is PUT /api/v1/inquiries/{id}: the owner-side
// status transition (pending, replied, closed). Access follows the
// inquiry's listing.
func (rt *Router) handleUpdateInquiry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateInquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inquiry, err := rt.db.GetInquiry(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	listing, err := rt.db.GetListing(r.Context(), inquiry.ListingID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !rt.authz.CanModifyListing(actor.AccountID, actor.Role, listing) {
		respondRoleDenied(w)
		return
	}

	status := models.InquiryStatus(req.Status)
	if err := rt.db.UpdateInquiryStatus(r.Context(), id, status); err != nil {
		respondStoreError(w, err)
		return
	}

	inquiry.Status = status
	respondSuccess(w, inquiry)
}
