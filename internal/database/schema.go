// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

/*
schema.go - Database Schema Management

Tables:
  - accounts: projection of marketplace actors (role, allowed languages)
  - listings: the property catalog
  - waves: named quota policies
  - wave_permissions: per-account wave grants with max/used counters
  - inquiries: contact records attached to listings
  - favorites: (account, listing) bookmark pairs

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements; there are
no live migrations. List-valued listing fields (images, amenities,
features) are stored as JSON text. Prices are DECIMAL(18,2) and cross the
driver boundary as strings to preserve exact precision.

The used_properties <= max_properties invariant is enforced twice: by the
CHECK constraint and by the guarded UPDATE in ReserveWaveSlot.
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		languages TEXT NOT NULL DEFAULT '[]',
		expires_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,

	`CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		offer_type TEXT NOT NULL,
		price DECIMAL(18,2) NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		bedrooms INTEGER,
		bathrooms INTEGER,
		area INTEGER NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		latitude DOUBLE,
		longitude DOUBLE,
		images TEXT NOT NULL DEFAULT '[]',
		amenities TEXT NOT NULL DEFAULT '[]',
		features TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		views BIGINT NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT 'en',
		account_id UUID,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS waves (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,

	`CREATE TABLE IF NOT EXISTS wave_permissions (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		wave_id UUID NOT NULL,
		max_properties INTEGER NOT NULL,
		used_properties INTEGER NOT NULL DEFAULT 0,
		granted_by UUID,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (account_id, wave_id),
		CHECK (used_properties >= 0),
		CHECK (used_properties <= max_properties)
	);`,

	`CREATE TABLE IF NOT EXISTS inquiries (
		id UUID PRIMARY KEY,
		listing_id UUID NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS favorites (
		account_id UUID NOT NULL,
		listing_id UUID NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (account_id, listing_id)
	);`,
}

// createIndexes creates indexes for frequently filtered columns and the
// most-recent-inquiry correlation.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_account ON listings(account_id);`,
		`CREATE INDEX IF NOT EXISTS idx_wave_permissions_pair ON wave_permissions(account_id, wave_id);`,
		`CREATE INDEX IF NOT EXISTS idx_inquiries_listing ON inquiries(listing_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_listing ON favorites(listing_id);`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
