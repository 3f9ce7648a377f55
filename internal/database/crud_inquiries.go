// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

// CreateInquiry records a contact request against a listing. The listing
// must exist; dangling inquiries would corrupt the latest-contact join.
func (db *DB) CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == uuid.Nil {
		inquiry.ID = uuid.New()
	}
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = time.Now().UTC()
	}
	inquiry.UpdatedAt = inquiry.CreatedAt
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryPending
	}

	if _, err := db.GetListing(ctx, inquiry.ListingID); err != nil {
		return err
	}

	query := `INSERT INTO inquiries (
		id, listing_id, name, phone, email, message, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		inquiry.ID, inquiry.ListingID, inquiry.Name, inquiry.Phone,
		inquiry.Email, inquiry.Message, inquiry.Status,
		inquiry.CreatedAt, inquiry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}

	return nil
}

// GetInquiry retrieves an inquiry by ID.
func (db *DB) GetInquiry(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	query := `SELECT id, listing_id, name, phone, email, message, status, created_at, updated_at
	FROM inquiries WHERE id = ?`

	var inquiry models.Inquiry
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&inquiry.ID, &inquiry.ListingID, &inquiry.Name, &inquiry.Phone,
		&inquiry.Email, &inquiry.Message, &inquiry.Status,
		&inquiry.CreatedAt, &inquiry.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}

	return &inquiry, nil
}

// ListInquiries returns inquiries, optionally scoped to one listing,
// newest first.
func (db *DB) ListInquiries(ctx context.Context, listingID uuid.UUID) ([]models.Inquiry, error) {
	query := `SELECT id, listing_id, name, phone, email, message, status, created_at, updated_at
	FROM inquiries WHERE 1=1`

	args := []any{}
	if listingID != uuid.Nil {
		query += " AND listing_id = ?"
		args = append(args, listingID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := make([]models.Inquiry, 0)
	for rows.Next() {
		var inquiry models.Inquiry
		if err := rows.Scan(
			&inquiry.ID, &inquiry.ListingID, &inquiry.Name, &inquiry.Phone,
			&inquiry.Email, &inquiry.Message, &inquiry.Status,
			&inquiry.CreatedAt, &inquiry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inquiry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inquiries: %w", err)
	}

	return inquiries, nil
}

// UpdateInquiryStatus moves an inquiry through its lifecycle.
func (db *DB) UpdateInquiryStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) error {
	unlock := db.lockRow("inquiry:" + id.String())
	defer unlock()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE inquiries SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update inquiry status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
