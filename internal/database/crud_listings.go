// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kardolabs/estatesync/internal/models"
)

const listingColumns = `
	l.id, l.title, l.description, l.type, l.offer_type,
	CAST(l.price AS VARCHAR), l.currency, l.bedrooms, l.bathrooms, l.area,
	l.address, l.city, l.country, l.latitude, l.longitude,
	l.images, l.amenities, l.features, l.status, l.views,
	l.language, l.account_id, l.created_at, l.updated_at`

// CreateListing inserts a new listing. The ID and timestamps are filled
// in when missing. The price is passed as a string and cast server-side
// so decimal precision survives the driver boundary.
func (db *DB) CreateListing(ctx context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}
	listing.UpdatedAt = listing.CreatedAt
	if listing.Status == "" {
		listing.Status = models.StatusActive
	}
	if listing.Currency == "" {
		listing.Currency = "USD"
	}
	if listing.Language == "" {
		listing.Language = "en"
	}

	query := `INSERT INTO listings (
		id, title, description, type, offer_type,
		price, currency, bedrooms, bathrooms, area,
		address, city, country, latitude, longitude,
		images, amenities, features, status, views,
		language, account_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, CAST(? AS DECIMAL(18,2)), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Type, listing.OfferType,
		listing.Price.String(), listing.Currency, listing.Bedrooms, listing.Bathrooms, listing.Area,
		listing.Address, listing.City, listing.Country, listing.Latitude, listing.Longitude,
		listToJSON(listing.Images), listToJSON(listing.Amenities), listToJSON(listing.Features),
		listing.Status, listing.Views,
		listing.Language, nullableUUID(listing.AccountID), listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetListing retrieves a single listing by ID regardless of status.
func (db *DB) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings l WHERE l.id = ?`

	row := db.conn.QueryRowContext(ctx, query, id)
	listing, err := scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return listing, nil
}

// UpdateListing replaces the mutable fields of a listing. Returns
// ErrNotFound when the listing does not exist.
func (db *DB) UpdateListing(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now().UTC()

	unlock := db.lockRow("listing:" + listing.ID.String())
	defer unlock()

	query := `UPDATE listings SET
		title = ?, description = ?, type = ?, offer_type = ?,
		price = CAST(? AS DECIMAL(18,2)), currency = ?, bedrooms = ?, bathrooms = ?, area = ?,
		address = ?, city = ?, country = ?, latitude = ?, longitude = ?,
		images = ?, amenities = ?, features = ?, status = ?,
		language = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		listing.Title, listing.Description, listing.Type, listing.OfferType,
		listing.Price.String(), listing.Currency, listing.Bedrooms, listing.Bathrooms, listing.Area,
		listing.Address, listing.City, listing.Country, listing.Latitude, listing.Longitude,
		listToJSON(listing.Images), listToJSON(listing.Amenities), listToJSON(listing.Features),
		listing.Status, listing.Language, listing.UpdatedAt, listing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
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

// DeleteListing removes a listing with its dependent favorites and
// inquiries in one transaction.
func (db *DB) DeleteListing(ctx context.Context, id uuid.UUID) error {
	unlock := db.lockRow("listing:" + id.String())
	defer unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE listing_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete listing favorites: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inquiries WHERE listing_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete listing inquiries: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing delete: %w", err)
	}

	return nil
}

// ClearListings removes every listing and all dependent rows, returning
// the number of listings removed.
func (db *DB) ClearListings(ctx context.Context) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return 0, fmt.Errorf("failed to clear favorites: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inquiries`); err != nil {
		return 0, fmt.Errorf("failed to clear inquiries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listings`); err != nil {
		return 0, fmt.Errorf("failed to clear listings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}

	return count, nil
}

// IncrementListingViews bumps the view counter for a listing. Missing
// listings are ignored; view counting is best effort.
func (db *DB) IncrementListingViews(ctx context.Context, id uuid.UUID) error {
	unlock := db.lockRow("listing:" + id.String())
	defer unlock()

	_, err := db.conn.ExecContext(ctx,
		`UPDATE listings SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// SearchListings executes a compiled filter and returns one page of
// results with owner and latest-contact summaries attached. The contact
// summary picks the newest inquiry with a phone number per listing.
func (db *DB) SearchListings(ctx context.Context, filter *ListingFilter) (*models.ListingPage, error) {
	conditions, args := filter.buildConditions()

	total, err := db.countListings(ctx, conditions, args)
	if err != nil {
		return nil, err
	}

	query := `SELECT` + listingColumns + `,
		a.id, a.name, a.role,
		c.name, c.phone, c.created_at
	FROM listings l
	LEFT JOIN accounts a ON a.id = l.account_id
	LEFT JOIN (
		SELECT listing_id, name, phone, created_at,
			row_number() OVER (PARTITION BY listing_id ORDER BY created_at DESC, id DESC) AS rn
		FROM inquiries
		WHERE phone <> ''
	) c ON c.listing_id = l.id AND c.rn = 1
	WHERE 1=1` + conditions + filter.orderClause()

	limitClause, limit, offset := filter.limitClause()
	query += limitClause

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	results := make([]models.ListingResult, 0)
	for rows.Next() {
		result, err := scanListingResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing result: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return &models.ListingPage{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// countListings returns the total row count for a compiled filter.
func (db *DB) countListings(ctx context.Context, conditions string, args []interface{}) (int64, error) {
	query := `SELECT COUNT(*) FROM listings l WHERE 1=1` + conditions

	var total int64
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return total, nil
}

// GetFeaturedListings returns the most viewed active listings.
func (db *DB) GetFeaturedListings(ctx context.Context, limit int) ([]models.Listing, error) {
	if limit < 1 {
		limit = 6
	}

	query := `SELECT` + listingColumns + `
	FROM listings l
	WHERE l.status = ?
	ORDER BY l.views DESC, l.created_at DESC, l.id ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, string(models.StatusActive), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured listings: %w", err)
	}
	defer rows.Close()

	listings := make([]models.Listing, 0, limit)
	for rows.Next() {
		listing, err := scanListingRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan featured listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating featured listings: %w", err)
	}

	return listings, nil
}

// listingScan collects the scan destinations shared by every listing
// query, with nullable intermediates converted in finish.
type listingScan struct {
	listing   models.Listing
	price     string
	bedrooms  sql.NullInt64
	bathrooms sql.NullInt64
	latitude  sql.NullFloat64
	longitude sql.NullFloat64
	images    any
	amenities any
	features  any
	accountID uuid.NullUUID
}

func (s *listingScan) targets() []any {
	return []any{
		&s.listing.ID, &s.listing.Title, &s.listing.Description, &s.listing.Type, &s.listing.OfferType,
		&s.price, &s.listing.Currency, &s.bedrooms, &s.bathrooms, &s.listing.Area,
		&s.listing.Address, &s.listing.City, &s.listing.Country, &s.latitude, &s.longitude,
		&s.images, &s.amenities, &s.features, &s.listing.Status, &s.listing.Views,
		&s.listing.Language, &s.accountID, &s.listing.CreatedAt, &s.listing.UpdatedAt,
	}
}

func (s *listingScan) finish() (*models.Listing, error) {
	price, err := decimal.NewFromString(s.price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing price %q: %w", s.price, err)
	}
	s.listing.Price = price

	if s.bedrooms.Valid {
		v := int(s.bedrooms.Int64)
		s.listing.Bedrooms = &v
	}
	if s.bathrooms.Valid {
		v := int(s.bathrooms.Int64)
		s.listing.Bathrooms = &v
	}
	if s.latitude.Valid {
		v := s.latitude.Float64
		s.listing.Latitude = &v
	}
	if s.longitude.Valid {
		v := s.longitude.Float64
		s.listing.Longitude = &v
	}
	if s.accountID.Valid {
		s.listing.AccountID = s.accountID.UUID
	}

	s.listing.Images = jsonToList(s.images)
	s.listing.Amenities = jsonToList(s.amenities)
	s.listing.Features = jsonToList(s.features)

	return &s.listing, nil
}

// scanListing scans a single-row query into a Listing.
func scanListing(row *sql.Row) (*models.Listing, error) {
	var s listingScan
	if err := row.Scan(s.targets()...); err != nil {
		return nil, err
	}
	return s.finish()
}

// scanListingRows scans rows into a Listing.
func scanListingRows(rows *sql.Rows) (*models.Listing, error) {
	var s listingScan
	if err := rows.Scan(s.targets()...); err != nil {
		return nil, err
	}
	return s.finish()
}

// scanListingResult scans a joined search row into a ListingResult.
func scanListingResult(rows *sql.Rows) (*models.ListingResult, error) {
	var s listingScan
	var ownerID uuid.NullUUID
	var ownerName, ownerRole sql.NullString
	var contactName, contactPhone sql.NullString
	var contactAt sql.NullTime

	targets := append(s.targets(),
		&ownerID, &ownerName, &ownerRole,
		&contactName, &contactPhone, &contactAt,
	)
	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}

	listing, err := s.finish()
	if err != nil {
		return nil, err
	}

	result := &models.ListingResult{Listing: *listing}
	if ownerID.Valid {
		result.Owner = &models.AccountSummary{
			ID:   ownerID.UUID,
			Name: ownerName.String,
			Role: models.Role(ownerRole.String),
		}
	}
	if contactName.Valid {
		result.LatestContact = &models.ContactSummary{
			Name:      contactName.String,
			Phone:     contactPhone.String,
			CreatedAt: contactAt.Time,
		}
	}

	return result, nil
}

// listToJSON serializes a string slice as a JSON array for storage.
func listToJSON(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	bytes, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(bytes)
}

// jsonToList converts a stored JSON array back to a string slice.
// DuckDB may hand the column back as a string, bytes, or decoded slice.
func jsonToList(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		return parseJSONList(val)
	case []byte:
		return parseJSONList(string(val))
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	default:
		return []string{}
	}
}

func parseJSONList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}

// nullableUUID maps the zero UUID to NULL for optional columns.
func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
