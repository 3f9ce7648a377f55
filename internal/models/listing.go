// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingType classifies the kind of property offered.
type ListingType string

// Supported property types.
const (
	ListingTypeHouse     ListingType = "house"
	ListingTypeApartment ListingType = "apartment"
	ListingTypeVilla     ListingType = "villa"
	ListingTypeLand      ListingType = "land"
)

// OfferType distinguishes sale listings from rental listings.
// The wire field name is "listingType" for historical API compatibility;
// it is unrelated to ListingType (the property kind).
type OfferType string

// Supported offer types.
const (
	OfferTypeSale OfferType = "sale"
	OfferTypeRent OfferType = "rent"
)

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

// Listing lifecycle states. Catalog search only ever returns active
// listings; sold and inactive listings are retained for the owner's
// dashboard and audit purposes.
const (
	StatusActive   ListingStatus = "active"
	StatusSold     ListingStatus = "sold"
	StatusInactive ListingStatus = "inactive"
)

// ValidListingType reports whether s is a known property type.
func ValidListingType(s string) bool {
	switch ListingType(s) {
	case ListingTypeHouse, ListingTypeApartment, ListingTypeVilla, ListingTypeLand:
		return true
	}
	return false
}

// ValidOfferType reports whether s is a known offer type.
func ValidOfferType(s string) bool {
	switch OfferType(s) {
	case OfferTypeSale, OfferTypeRent:
		return true
	}
	return false
}

// ValidListingStatus reports whether s is a known lifecycle state.
func ValidListingStatus(s string) bool {
	switch ListingStatus(s) {
	case StatusActive, StatusSold, StatusInactive:
		return true
	}
	return false
}

// CanTransitionStatus encodes the listing status transition table:
//
//	active  -> inactive, sold
//	inactive -> active
//	sold    -> (terminal)
//
/// Sold is terminal: reverting a mistaken sale is an operator action
// (delete and recreate), not a status transition. A no-op transition
// (from == to) is always allowed.
func CanTransitionStatus(from, to ListingStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusActive:
		return to == StatusInactive || to == StatusSold
	case StatusInactive:
		return to == StatusActive
	case StatusSold:
		return false
	}
	return false
}

// Listing is a property record offered for sale or rent.
//
// Price is an exact-precision decimal and serializes as a JSON string to
// avoid float drift in clients. Views is a monotonic counter; it is only
// ever incremented. Bedrooms, Bathrooms, Latitude and Longitude are
// optional and nil when unset.
type Listing struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        ListingType     `json:"type"`
	OfferType   OfferType       `json:"listingType"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Bedrooms    *int            `json:"bedrooms,omitempty"`
	Bathrooms   *int            `json:"bathrooms,omitempty"`
	Area        int             `json:"area"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Features    []string        `json:"features,omitempty"`
	Status      ListingStatus   `json:"status"`
	Views       int64           `json:"views"`
	Language    string          `json:"language"`
	AccountID   uuid.UUID       `json:"accountId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PrimaryImage returns the first image, the listing's primary photo,
// or "" when the listing has no images.
func (l *Listing) PrimaryImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// AccountSummary is the owner projection joined onto search results.
// All fields are empty for orphaned listings whose account was removed.
type AccountSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// ContactSummary is the most recent inquiry with a phone number for a
// listing, denormalized onto search results so the map UI can show a
// call-back hint without fetching the full inquiry list.
type ContactSummary struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListingResult is one enriched row of a catalog search page.
type ListingResult struct {
	Listing
	Owner         *AccountSummary `json:"owner,omitempty"`
	LatestContact *ContactSummary `json:"latestContact,omitempty"`
}

// ListingPage is an ordered page of search results with paging metadata.
type ListingPage struct {
	Results []ListingResult `json:"results"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}
