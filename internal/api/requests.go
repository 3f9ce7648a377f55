// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/models"
	"github.com/kardolabs/estatesync/internal/validation"
)

// maxBodyBytes caps request bodies. Listing payloads with image lists
// stay well under this.
const maxBodyBytes = 1 << 20

// CreateListingRequest is the create-listing payload.
type CreateListingRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Type        string          `json:"type" validate:"required,listingtype"`
	OfferType   string          `json:"listingType" validate:"required,offertype"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Bedrooms    *int            `json:"bedrooms" validate:"omitempty,min=0,max=100"`
	Bathrooms   *int            `json:"bathrooms" validate:"omitempty,min=0,max=100"`
	Area        int             `json:"area" validate:"required,min=1"`
	Address     string          `json:"address" validate:"max=500"`
	City        string          `json:"city" validate:"required,min=1,max=100"`
	Country     string          `json:"country" validate:"required,min=2,max=100"`
	Latitude    *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64        `json:"longitude" validate:"omitempty,longitude"`
	Images      []string        `json:"images" validate:"max=30,dive,max=1000"`
	Amenities   []string        `json:"amenities" validate:"max=50,dive,max=100"`
	Features    []string        `json:"features" validate:"max=50,dive,max=100"`
	Language    string          `json:"language" validate:"required,langtag"`
	WaveID      string          `json:"waveId" validate:"omitempty,uuid"`
}

// UpdateListingRequest is the update-listing payload. Nil fields are
// left unchanged; slices replace the stored value when present.
type UpdateListingRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Type        *string          `json:"type" validate:"omitempty,listingtype"`
	OfferType   *string          `json:"listingType" validate:"omitempty,offertype"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Bedrooms    *int             `json:"bedrooms" validate:"omitempty,min=0,max=100"`
	Bathrooms   *int             `json:"bathrooms" validate:"omitempty,min=0,max=100"`
	Area        *int             `json:"area" validate:"omitempty,min=1"`
	Address     *string          `json:"address" validate:"omitempty,max=500"`
	City        *string          `json:"city" validate:"omitempty,min=1,max=100"`
	Country     *string          `json:"country" validate:"omitempty,min=2,max=100"`
	Latitude    *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64         `json:"longitude" validate:"omitempty,longitude"`
	Images      []string         `json:"images" validate:"max=30,dive,max=1000"`
	Amenities   []string         `json:"amenities" validate:"max=50,dive,max=100"`
	Features    []string         `json:"features" validate:"max=50,dive,max=100"`
	Status      *string          `json:"status" validate:"omitempty,liststatus"`
	Language    *string          `json:"language" validate:"omitempty,langtag"`
}

// CreateInquiryRequest is the public contact-form payload.
type CreateInquiryRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Phone   string `json:"phone" validate:"omitempty,min=5,max=40"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message" validate:"max=5000"`
}

// UpdateInquiryRequest moves an inquiry to a new handling status.
type UpdateInquiryRequest struct {
	Status string `json:"status" validate:"required,inquirystatus"`
}

// WaveRequest is the create/update payload for a quota policy.
type WaveRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// GrantPermissionRequest binds an account to a wave with a ceiling.
type GrantPermissionRequest struct {
	AccountID     string `json:"accountId" validate:"required,uuid"`
	MaxProperties int    `json:"maxProperties" validate:"min=0,max=100000"`
}

// UpdatePermissionRequest changes the ceiling of an existing grant.
type UpdatePermissionRequest struct {
	MaxProperties int `json:"maxProperties" validate:"min=0,max=100000"`
}

// decodeJSON reads and unmarshals the request body into dst and runs
// struct validation. It writes the error response itself and reports
// whether the caller should continue. Unknown JSON fields are dropped.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "malformed request body", nil)
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return false
	}

	return true
}

// searchQuery is the validated subset of catalog query parameters.
// Free-text fields (city, country, search) need no validation beyond
// what the filter compiler escapes itself.
type searchQuery struct {
	Type      string `validate:"omitempty,listingtype"`
	OfferType string `validate:"omitempty,offertype"`
	Language  string `validate:"omitempty,langtag"`
	SortBy    string `validate:"omitempty,sortkey"`
	SortOrder string `validate:"omitempty,sortorder"`
	Limit     int    `validate:"min=0,max=100"`
	Offset    int    `validate:"min=0"`
}

// parseListingFilter compiles the recognized query parameters into a
// store filter. Unrecognized parameters are ignored; recognized ones
// with unparsable values are rejected. It writes the error response
// itself and returns nil when the caller should stop.
func parseListingFilter(w http.ResponseWriter, r *http.Request) *database.ListingFilter {
	q := r.URL.Query()

	filter := &database.ListingFilter{
		Type:      q.Get("type"),
		OfferType: q.Get("listingType"),
		City:      q.Get("city"),
		Country:   q.Get("country"),
		Language:  q.Get("language"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if raw := q.Get("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondFieldError(w, "accountId", "must be a valid UUID")
			return nil
		}
		filter.AccountID = id
	}

	var ok bool
	if filter.MinPrice, ok = parseDecimalParam(w, q, "minPrice"); !ok {
		return nil
	}
	if filter.MaxPrice, ok = parseDecimalParam(w, q, "maxPrice"); !ok {
		return nil
	}
	if filter.Bedrooms, ok = parseIntParam(w, q, "bedrooms"); !ok {
		return nil
	}
	if filter.Bathrooms, ok = parseIntParam(w, q, "bathrooms"); !ok {
		return nil
	}
	if filter.MinArea, ok = parseIntParam(w, q, "minArea"); !ok {
		return nil
	}
	if filter.MaxArea, ok = parseIntParam(w, q, "maxArea"); !ok {
		return nil
	}

	var limit, offset *int
	if limit, ok = parseIntParam(w, q, "limit"); !ok {
		return nil
	}
	if offset, ok = parseIntParam(w, q, "offset"); !ok {
		return nil
	}
	if limit != nil {
		filter.Limit = *limit
	}
	if offset != nil {
		filter.Offset = *offset
	}

	sq := searchQuery{
		Type:      filter.Type,
		OfferType: filter.OfferType,
		Language:  filter.Language,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	if verr := validation.ValidateStruct(&sq); verr != nil {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return nil
	}

	return filter
}

// parseIntParam parses an optional non-negative integer query parameter.
func parseIntParam(w http.ResponseWriter, q url.Values, name string) (*int, bool) {
	raw := q.Get(name)
	if raw == "" {
		return nil, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondFieldError(w, name, "must be a non-negative integer")
		return nil, false
	}

	return &n, true
}

// parseDecimalParam parses an optional non-negative decimal query
// parameter.
func parseDecimalParam(w http.ResponseWriter, q url.Values, name string) (*decimal.Decimal, bool) {
	raw := q.Get(name)
	if raw == "" {
		return nil, true
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		respondFieldError(w, name, "must be a non-negative number")
		return nil, false
	}

	return &d, true
}

// respondFieldError writes a 400 validation error naming one parameter.
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondError(w, http.StatusBadRequest, models.ErrCodeValidation, field+" "+message, map[string]interface{}{
		"field": field,
	})
}
