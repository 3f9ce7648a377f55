// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

func TestCreateInquiry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	listing := newTestListing(t, "Inquired", "Erbil", "60000")
	checkNoError(t, db.CreateListing(ctx, listing))

	inquiry := &models.Inquiry{
		ListingID: listing.ID,
		Name:      "Caller",
		Phone:     "07501234567",
		Message:   "Is this still available?",
	}
	checkNoError(t, db.CreateInquiry(ctx, inquiry))

	got, err := db.GetInquiry(ctx, inquiry.ID)
	checkNoError(t, err)
	if got.Status != models.InquiryPending {
		t.Errorf("new inquiries start pending, got %s", got.Status)
	}
	if got.Message != inquiry.Message {
		t.Errorf("message: expected %q, got %q", inquiry.Message, got.Message)
	}
}

func TestCreateInquiryMissingListing(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateInquiry(context.Background(), &models.Inquiry{
		ListingID: uuid.New(),
		Name:      "Caller",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListInquiriesScoped(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newTestListing(t, "First", "Erbil", "60000")
	second := newTestListing(t, "Second", "Erbil", "70000")
	checkNoError(t, db.CreateListing(ctx, first))
	checkNoError(t, db.CreateListing(ctx, second))

	checkNoError(t, db.CreateInquiry(ctx, &models.Inquiry{ListingID: first.ID, Name: "A"}))
	checkNoError(t, db.CreateInquiry(ctx, &models.Inquiry{ListingID: first.ID, Name: "B"}))
	checkNoError(t, db.CreateInquiry(ctx, &models.Inquiry{ListingID: second.ID, Name: "C"}))

	scoped, err := db.ListInquiries(ctx, first.ID)
	checkNoError(t, err)
	if len(scoped) != 2 {
		t.Errorf("expected 2 inquiries for the first listing, got %d", len(scoped))
	}

	all, err := db.ListInquiries(ctx, uuid.Nil)
	checkNoError(t, err)
	if len(all) != 3 {
		t.Errorf("expected 3 inquiries in total, got %d", len(all))
	}
}

func TestUpdateInquiryStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	listing := newTestListing(t, "Inquired", "Erbil", "60000")
	checkNoError(t, db.CreateListing(ctx, listing))

	inquiry := &models.Inquiry{ListingID: listing.ID, Name: "Caller"}
	checkNoError(t, db.CreateInquiry(ctx, inquiry))

	checkNoError(t, db.UpdateInquiryStatus(ctx, inquiry.ID, models.InquiryReplied))

	got, err := db.GetInquiry(ctx, inquiry.ID)
	checkNoError(t, err)
	if got.Status != models.InquiryReplied {
		t.Errorf("status: expected replied, got %s", got.Status)
	}

	err = db.UpdateInquiryStatus(ctx, uuid.New(), models.InquiryClosed)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing inquiry, got %v", err)
	}
}
