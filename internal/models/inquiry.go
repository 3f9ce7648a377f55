// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"

	"github.com/google/uuid"
)

// InquiryStatus is the handling state of a contact record.
type InquiryStatus string

// Inquiry handling states.
const (
	InquiryPending InquiryStatus = "pending"
	InquiryReplied InquiryStatus = "replied"
	InquiryClosed  InquiryStatus = "closed"
)

// ValidInquiryStatus reports whether s is a known inquiry status.
func ValidInquiryStatus(s string) bool {
	switch InquiryStatus(s) {
	case InquiryPending, InquiryReplied, InquiryClosed:
		return true
	}
	return false
}

// Inquiry is a contact record attached to a listing: a prospective buyer
// or renter asking about the property. Created publicly with pending
// status; the owner moves it through replied and closed.
type Inquiry struct {
	ID        uuid.UUID     `json:"id"`
	ListingID uuid.UUID     `json:"listingId"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Email     string        `json:"email,omitempty"`
	Message   string        `json:"message,omitempty"`
	Status    InquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Favorite is an (account, listing) bookmark pair. At most one row exists
// per pair; adding an existing favorite is an idempotent no-op.
type Favorite struct {
	AccountID uuid.UUID `json:"accountId"`
	ListingID uuid.UUID `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
