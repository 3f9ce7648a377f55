// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kardolabs/estatesync/internal/models"
)

// Pagination bounds for listing searches.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListingFilter holds the recognized search criteria for catalog queries.
// Zero-valued fields are ignored. Unknown request parameters never reach
// this struct; the API layer drops them before filtering.
type ListingFilter struct {
	Type      string
	OfferType string
	City      string
	Country   string
	Language  string
	AccountID uuid.UUID
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Bedrooms  *int
	Bathrooms *int
	MinArea   *int
	MaxArea   *int
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// sortColumns whitelists the sortable keys. Anything else falls back to
// the default ordering.
var sortColumns = map[string]string{
	"price": "l.price",
	"date":  "l.created_at",
	"views": "l.views",
}

// escapeLike escapes LIKE wildcards in user-supplied substrings so a
// literal "%" or "_" in a search term matches itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// buildConditions returns the WHERE conditions (without the WHERE
// keyword) and corresponding arguments. The base query should already
// have "WHERE 1=1" to which these conditions are appended.
//
// Catalog search shows active listings only; no filter field can widen
// that. Retired and sold listings are reachable solely by direct ID.
func (f *ListingFilter) buildConditions() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "l.status = ?")
	args = append(args, string(models.StatusActive))

	if f.Type != "" {
		conditions = append(conditions, "l.type = ?")
		args = append(args, f.Type)
	}

	if f.OfferType != "" {
		conditions = append(conditions, "l.offer_type = ?")
		args = append(args, f.OfferType)
	}

	if f.City != "" {
		conditions = append(conditions, `lower(l.city) LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, escapeLike(strings.ToLower(f.City)))
	}

	if f.Country != "" {
		conditions = append(conditions, "lower(l.country) = lower(?)")
		args = append(args, f.Country)
	}

	if f.Language != "" {
		conditions = append(conditions, "l.language = ?")
		args = append(args, f.Language)
	}

	if f.AccountID != uuid.Nil {
		conditions = append(conditions, "l.account_id = ?")
		args = append(args, f.AccountID.String())
	}

	if f.MinPrice != nil {
		conditions = append(conditions, "l.price >= CAST(? AS DECIMAL(18,2))")
		args = append(args, f.MinPrice.String())
	}

	if f.MaxPrice != nil {
		conditions = append(conditions, "l.price <= CAST(? AS DECIMAL(18,2))")
		args = append(args, f.MaxPrice.String())
	}

	if f.Bedrooms != nil {
		conditions = append(conditions, "l.bedrooms >= ?")
		args = append(args, *f.Bedrooms)
	}

	if f.Bathrooms != nil {
		conditions = append(conditions, "l.bathrooms >= ?")
		args = append(args, *f.Bathrooms)
	}

	if f.MinArea != nil {
		conditions = append(conditions, "l.area >= ?")
		args = append(args, *f.MinArea)
	}

	if f.MaxArea != nil {
		conditions = append(conditions, "l.area <= ?")
		args = append(args, *f.MaxArea)
	}

	if f.Search != "" {
		term := escapeLike(strings.ToLower(f.Search))
		conditions = append(conditions,
			`(lower(l.title) LIKE '%' || ? || '%' ESCAPE '\' OR lower(l.description) LIKE '%' || ? || '%' ESCAPE '\' OR lower(l.address) LIKE '%' || ? || '%' ESCAPE '\')`)
		args = append(args, term, term, term)
	}

	if len(conditions) > 0 {
		return " AND " + strings.Join(conditions, " AND "), args
	}

	return "", args
}

// orderClause returns the ORDER BY clause for the filter. Unknown sort
// keys fall back to newest-first. The listing id is always appended as a
// tiebreaker so pagination is stable across requests.
func (f *ListingFilter) orderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "l.created_at"
	}

	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}
	// Default key sorts newest-first unless the caller asked otherwise.
	if f.SortBy == "" && f.SortOrder == "" {
		direction = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s, l.id ASC", column, direction)
}

// limitClause returns the LIMIT/OFFSET clause and the normalized limit
// and offset used to build it.
func (f *ListingFilter) limitClause() (string, int, int) {
	limit := f.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset), limit, offset
}
