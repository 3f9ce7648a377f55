// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

// seedListing creates one listing through the API as an admin and
// returns it.
func (ts *testServer) seedListing(t *testing.T) models.Listing {
	t.Helper()

	token := ts.token(t, uuid.New(), models.RoleAdmin, "en")
	resp, envelope := ts.do(t, http.MethodPost, "/api/v1/properties", token, validListingBody(uuid.Nil))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed listing status = %d: %+v", resp.StatusCode, envelope.Error)
	}

	var listing models.Listing
	decodeData(t, envelope, &listing)
	return listing
}

func TestFavoriteLifecycle(t *testing.T) {
	ts := newTestServer(t)
	listing := ts.seedListing(t)
	token := ts.token(t, uuid.New(), models.RoleCustomer, "en")
	path := "/api/v1/favorites/" + listing.ID.String()

	// Adding twice is idempotent.
	for i := 0; i < 2; i++ {
		resp, _ := ts.do(t, http.MethodPut, path, token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add favorite attempt %d status = %d, want %d", i+1, resp.StatusCode, http.StatusOK)
		}
	}

	resp, envelope := ts.do(t, http.MethodGet, "/api/v1/favorites", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list favorites status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var listings []models.Listing
	decodeData(t, envelope, &listings)
	if len(listings) != 1 {
		t.Fatalf("favorites = %d, want 1", len(listings))
	}
	if listings[0].ID != listing.ID {
		t.Errorf("favorite = %s, want %s", listings[0].ID, listing.ID)
	}

	resp, _ = ts.do(t, http.MethodDelete, path, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove favorite status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Removing again is 404.
	resp, envelope = ts.do(t, http.MethodDelete, path, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", envelope.Error, models.ErrCodeNotFound)
	}
}

func TestFavoriteUnknownListing(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, uuid.New(), models.RoleCustomer, "en")

	resp, envelope := ts.do(t, http.MethodPut, "/api/v1/favorites/"+uuid.NewString(), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeNotFound {
		t.Errorf("error = %+v, want code %s", envelope.Error, models.ErrCodeNotFound)
	}
}

func TestFavoritesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/favorites", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestFavoritesScopedToAccount(t *testing.T) {
	ts := newTestServer(t)
	listing := ts.seedListing(t)

	first := ts.token(t, uuid.New(), models.RoleCustomer, "en")
	second := ts.token(t, uuid.New(), models.RoleCustomer, "en")

	ts.do(t, http.MethodPut, "/api/v1/favorites/"+listing.ID.String(), first, nil)

	_, envelope := ts.do(t, http.MethodGet, "/api/v1/favorites", second, nil)
	var listings []models.Listing
	decodeData(t, envelope, &listings)
	if len(listings) != 0 {
		t.Errorf("other account sees %d favorites, want 0", len(listings))
	}
}
