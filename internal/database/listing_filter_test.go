// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildConditionsDefaultsToActive(t *testing.T) {
	f := &ListingFilter{}
	conditions, args := f.buildConditions()

	if !strings.Contains(conditions, "l.status = ?") {
		t.Errorf("expected implicit status condition, got %q", conditions)
	}
	if len(args) != 1 || args[0] != "active" {
		t.Errorf("expected single 'active' arg, got %v", args)
	}
}

func TestBuildConditionsStatusAlwaysActive(t *testing.T) {
	// Even a fully populated filter must keep exactly one status
	// predicate, bound to active.
	bedrooms := 2
	f := &ListingFilter{
		Type:     "house",
		City:     "Erbil",
		Bedrooms: &bedrooms,
		Search:   "sold",
	}
	conditions, args := f.buildConditions()

	if got := strings.Count(conditions, "l.status = ?"); got != 1 {
		t.Fatalf("expected exactly one status condition, got %d in %q", got, conditions)
	}
	if args[0] != "active" {
		t.Errorf("status arg = %v, want active", args[0])
	}
}

func TestBuildConditionsCombines(t *testing.T) {
	minPrice := decimal.NewFromInt(50000)
	maxPrice := decimal.NewFromInt(200000)
	bedrooms := 3

	f := &ListingFilter{
		Type:     "house",
		City:     "Erbil",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Bedrooms: &bedrooms,
		Search:   "garden",
	}
	conditions, args := f.buildConditions()

	for _, want := range []string{
		"l.type = ?",
		"lower(l.city) LIKE",
		"l.price >= CAST(? AS DECIMAL(18,2))",
		"l.price <= CAST(? AS DECIMAL(18,2))",
		"l.bedrooms >= ?",
		"lower(l.title) LIKE",
		"lower(l.description) LIKE",
		"lower(l.address) LIKE",
	} {
		if !strings.Contains(conditions, want) {
			t.Errorf("conditions missing %q: %s", want, conditions)
		}
	}

	// status + type + city + min + max + bedrooms + 3x search term
	if len(args) != 9 {
		t.Errorf("expected 9 args, got %d: %v", len(args), args)
	}
}

func TestBuildConditionsEscapesLikeWildcards(t *testing.T) {
	f := &ListingFilter{City: "10%_off"}
	_, args := f.buildConditions()

	found := false
	for _, arg := range args {
		if s, ok := arg.(string); ok && strings.Contains(s, `\%`) && strings.Contains(s, `\_`) {
			found = true
		}
	}
	if !found {
		t.Errorf("LIKE wildcards not escaped in args: %v", args)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      string
	}{
		{"default is newest first", "", "", "ORDER BY l.created_at DESC"},
		{"price ascending", "price", "asc", "ORDER BY l.price ASC"},
		{"price descending", "price", "desc", "ORDER BY l.price DESC"},
		{"views", "views", "desc", "ORDER BY l.views DESC"},
		{"unknown key falls back to date", "rating", "asc", "ORDER BY l.created_at ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ListingFilter{SortBy: tt.sortBy, SortOrder: tt.sortOrder}
			got := f.orderClause()
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
			if !strings.Contains(got, "l.id ASC") {
				t.Errorf("missing id tiebreaker in %q", got)
			}
		})
	}
}

func TestLimitClauseNormalization(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"zero values get defaults", 0, 0, DefaultLimit, 0},
		{"negative offset floors to zero", 10, -5, 10, 0},
		{"oversized limit is capped", 500, 0, MaxLimit, 0},
		{"valid values pass through", 25, 40, 25, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ListingFilter{Limit: tt.limit, Offset: tt.offset}
			_, limit, offset := f.limitClause()
			if limit != tt.wantLimit {
				t.Errorf("limit: expected %d, got %d", tt.wantLimit, limit)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset: expected %d, got %d", tt.wantOffset, offset)
			}
		})
	}
}

func TestLimitClauseFormat(t *testing.T) {
	f := &ListingFilter{Limit: 20, Offset: 40}
	clause, _, _ := f.limitClause()
	if clause != " LIMIT 20 OFFSET 40" {
		t.Errorf("unexpected limit clause: %q", clause)
	}
}
