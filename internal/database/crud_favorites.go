// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

// AddFavorite bookmarks a listing for an account. Re-adding an existing
// favorite is a no-op; the pair is at most once in the table.
func (db *DB) AddFavorite(ctx context.Context, accountID, listingID uuid.UUID) error {
	if _, err := db.GetListing(ctx, listingID); err != nil {
		return err
	}

	query := `INSERT INTO favorites (account_id, listing_id, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT (account_id, listing_id) DO NOTHING`

	_, err := db.conn.ExecContext(ctx, query, accountID, listingID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

// RemoveFavorite deletes a bookmark. Removing a favorite that was never
// added returns ErrNotFound.
func (db *DB) RemoveFavorite(ctx context.Context, accountID, listingID uuid.UUID) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE account_id = ? AND listing_id = ?`,
		accountID, listingID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
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

// ListFavoriteListings returns the listings an account has bookmarked,
// most recently favorited first.
func (db *DB) ListFavoriteListings(ctx context.Context, accountID uuid.UUID) ([]models.Listing, error) {
	query := `SELECT` + listingColumns + `
	FROM favorites f
	JOIN listings l ON l.id = f.listing_id
	WHERE f.account_id = ?
	ORDER BY f.created_at DESC, l.id ASC`

	rows, err := db.conn.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	listings := make([]models.Listing, 0)
	for rows.Next() {
		listing, err := scanListingRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return listings, nil
}

// IsFavorite reports whether the pair exists.
func (db *DB) IsFavorite(ctx context.Context, accountID, listingID uuid.UUID) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE account_id = ? AND listing_id = ?`,
		accountID, listingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}
