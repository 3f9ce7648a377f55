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

// UpsertAccount inserts or refreshes an account projection. The catalog
// is not the system of record for accounts; rows here mirror whatever
// the token or admin surface last asserted.
func (db *DB) UpsertAccount(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.Role == "" {
		account.Role = models.RoleCustomer
	}

	unlock := db.lockRow("account:" + account.ID.String())
	defer unlock()

	query := `INSERT INTO accounts (id, name, email, role, languages, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		email = excluded.email,
		role = excluded.role,
		languages = excluded.languages,
		expires_at = excluded.expires_at`

	_, err := db.conn.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.Role,
		listToJSON(account.Languages), account.ExpiresAt, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by ID.
func (db *DB) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT id, name, email, role, languages, expires_at, created_at
	FROM accounts WHERE id = ?`

	row := db.conn.QueryRowContext(ctx, query, id)

	var account models.Account
	var languages any
	var expiresAt sql.NullTime

	err := row.Scan(&account.ID, &account.Name, &account.Email, &account.Role,
		&languages, &expiresAt, &account.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Languages = jsonToList(languages)
	if expiresAt.Valid {
		account.ExpiresAt = &expiresAt.Time
	}

	return &account, nil
}

// ListAccounts returns all accounts ordered by creation time.
func (db *DB) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `SELECT id, name, email, role, languages, expires_at, created_at
	FROM accounts ORDER BY created_at DESC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		var languages any
		var expiresAt sql.NullTime

		if err := rows.Scan(&account.ID, &account.Name, &account.Email, &account.Role,
			&languages, &expiresAt, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		account.Languages = jsonToList(languages)
		if expiresAt.Valid {
			account.ExpiresAt = &expiresAt.Time
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}
