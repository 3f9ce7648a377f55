// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kardolabs/estatesync/internal/models"
)

// testDBSemaphore limits concurrent database creation. Many parallel
// DuckDB CGO connections can hang under CI resource pressure, so each
// test holds the slot for its entire lifecycle.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// mustPrice parses a decimal literal or fails the test.
func mustPrice(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad price literal %q: %v", s, err)
	}
	return d
}

// newTestListing builds a minimal valid listing for insertion.
func newTestListing(t *testing.T, title, city, price string) *models.Listing {
	t.Helper()
	return &models.Listing{
		ID:        uuid.New(),
		Title:     title,
		Type:      models.ListingTypeHouse,
		OfferType: models.OfferTypeSale,
		Price:     mustPrice(t, price),
		Area:      150,
		City:      city,
		Country:   "Iraq",
		Status:    models.StatusActive,
		Language:  "en",
	}
}

func TestNewInMemory(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestSchemaTablesExist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tables := []string{"accounts", "listings", "waves", "wave_permissions", "inquiries", "favorites"}
	for _, table := range tables {
		var count int
		query := "SELECT COUNT(*) FROM " + table
		if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
		if count != 0 {
			t.Errorf("table %s: expected empty, got %d rows", table, count)
		}
	}
}

func TestLockRowReentrant(t *testing.T) {
	db := setupTestDB(t)

	unlock := db.lockRow("k1")
	unlock()
	unlock2 := db.lockRow("k1")
	unlock2()
}
