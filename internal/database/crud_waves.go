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

// CreateWave creates a named quota policy. Wave names are unique.
func (db *DB) CreateWave(ctx context.Context, wave *models.Wave) error {
	if wave.ID == uuid.Nil {
		wave.ID = uuid.New()
	}
	if wave.CreatedAt.IsZero() {
		wave.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO waves (id, name, description, created_at) VALUES (?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query, wave.ID, wave.Name, wave.Description, wave.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create wave: %w", err)
	}

	return nil
}

// GetWave retrieves a wave by ID.
func (db *DB) GetWave(ctx context.Context, id uuid.UUID) (*models.Wave, error) {
	query := `SELECT id, name, description, created_at FROM waves WHERE id = ?`

	var wave models.Wave
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&wave.ID, &wave.Name, &wave.Description, &wave.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wave: %w", err)
	}

	return &wave, nil
}

// ListWaves returns all waves ordered by creation time.
func (db *DB) ListWaves(ctx context.Context) ([]models.Wave, error) {
	query := `SELECT id, name, description, created_at FROM waves ORDER BY created_at ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list waves: %w", err)
	}
	defer rows.Close()

	waves := make([]models.Wave, 0)
	for rows.Next() {
		var wave models.Wave
		if err := rows.Scan(&wave.ID, &wave.Name, &wave.Description, &wave.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wave: %w", err)
		}
		waves = append(waves, wave)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waves: %w", err)
	}

	return waves, nil
}

// UpdateWave renames a wave or changes its description. Wave names stay
// unique across updates.
func (db *DB) UpdateWave(ctx context.Context, wave *models.Wave) error {
	query := `UPDATE waves SET name = ?, description = ? WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query, wave.Name, wave.Description, wave.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update wave: %w", err)
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

// DeleteWave removes a wave and all of its grants.
func (db *DB) DeleteWave(ctx context.Context, id uuid.UUID) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wave_permissions WHERE wave_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete wave grants: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM waves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wave: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wave delete: %w", err)
	}

	return nil
}

// GrantWavePermission creates a quota grant for an (account, wave) pair.
// Each pair carries at most one grant.
func (db *DB) GrantWavePermission(ctx context.Context, perm *models.WavePermission) error {
	if perm.ID == uuid.Nil {
		perm.ID = uuid.New()
	}
	if perm.CreatedAt.IsZero() {
		perm.CreatedAt = time.Now().UTC()
	}
	perm.UpdatedAt = perm.CreatedAt

	query := `INSERT INTO wave_permissions (
		id, account_id, wave_id, max_properties, used_properties,
		granted_by, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		perm.ID, perm.AccountID, perm.WaveID, perm.MaxProperties, perm.UsedProperties,
		nullableUUID(perm.GrantedBy), perm.CreatedAt, perm.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to grant wave permission: %w", err)
	}

	return nil
}

// GetWavePermission retrieves the grant for an (account, wave) pair.
func (db *DB) GetWavePermission(ctx context.Context, accountID, waveID uuid.UUID) (*models.WavePermission, error) {
	query := `SELECT id, account_id, wave_id, max_properties, used_properties,
		granted_by, created_at, updated_at
	FROM wave_permissions WHERE account_id = ? AND wave_id = ?`

	row := db.conn.QueryRowContext(ctx, query, accountID, waveID)
	perm, err := scanWavePermission(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wave permission: %w", err)
	}

	return perm, nil
}

// ListAccountPermissions returns every grant held by an account.
func (db *DB) ListAccountPermissions(ctx context.Context, accountID uuid.UUID) ([]models.WavePermission, error) {
	query := `SELECT id, account_id, wave_id, max_properties, used_properties,
		granted_by, created_at, updated_at
	FROM wave_permissions WHERE account_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account permissions: %w", err)
	}
	defer rows.Close()

	perms := make([]models.WavePermission, 0)
	for rows.Next() {
		perm, err := scanWavePermission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wave permission: %w", err)
		}
		perms = append(perms, *perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wave permissions: %w", err)
	}

	return perms, nil
}

// UpdateWavePermissionMax changes a grant's ceiling. The new ceiling may
// not drop below the slots already consumed.
func (db *DB) UpdateWavePermissionMax(ctx context.Context, accountID, waveID uuid.UUID, maxProperties int) error {
	unlock := db.lockRow(grantKey(accountID, waveID))
	defer unlock()

	query := `UPDATE wave_permissions
	SET max_properties = ?, updated_at = ?
	WHERE account_id = ? AND wave_id = ? AND used_properties <= ?`

	result, err := db.conn.ExecContext(ctx, query,
		maxProperties, time.Now().UTC(), accountID, waveID, maxProperties)
	if err != nil {
		return fmt.Errorf("failed to update wave permission: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := db.GetWavePermission(ctx, accountID, waveID); err != nil {
			return err
		}
		return ErrQuotaExceeded
	}

	return nil
}

// RevokeWavePermission removes a grant.
func (db *DB) RevokeWavePermission(ctx context.Context, accountID, waveID uuid.UUID) error {
	unlock := db.lockRow(grantKey(accountID, waveID))
	defer unlock()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM wave_permissions WHERE account_id = ? AND wave_id = ?`,
		accountID, waveID)
	if err != nil {
		return fmt.Errorf("failed to revoke wave permission: %w", err)
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

// ReserveWaveSlot consumes one slot from a grant. The increment and the
// ceiling check are a single guarded UPDATE so concurrent reserves never
// overshoot max_properties. Zero rows affected means the grant is either
// missing or full; a follow-up read tells the two apart.
func (db *DB) ReserveWaveSlot(ctx context.Context, accountID, waveID uuid.UUID) error {
	unlock := db.lockRow(grantKey(accountID, waveID))
	defer unlock()

	query := `UPDATE wave_permissions
	SET used_properties = used_properties + 1, updated_at = ?
	WHERE account_id = ? AND wave_id = ? AND used_properties < max_properties`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), accountID, waveID)
	if err != nil {
		return fmt.Errorf("failed to reserve wave slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := db.GetWavePermission(ctx, accountID, waveID); err != nil {
			return err
		}
		return ErrQuotaExceeded
	}

	return nil
}

// ReleaseWaveSlot hands back one slot previously taken by ReserveWaveSlot,
// for callers whose reserve succeeded but whose follow-up write did not.
// The floor guard keeps used_properties from going negative.
func (db *DB) ReleaseWaveSlot(ctx context.Context, accountID, waveID uuid.UUID) error {
	unlock := db.lockRow(grantKey(accountID, waveID))
	defer unlock()

	query := `UPDATE wave_permissions
	SET used_properties = used_properties - 1, updated_at = ?
	WHERE account_id = ? AND wave_id = ? AND used_properties > 0`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), accountID, waveID)
	if err != nil {
		return fmt.Errorf("failed to release wave slot: %w", err)
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

func grantKey(accountID, waveID uuid.UUID) string {
	return "grant:" + accountID.String() + ":" + waveID.String()
}

func scanWavePermission(scan func(...any) error) (*models.WavePermission, error) {
	var perm models.WavePermission
	var grantedBy uuid.NullUUID

	err := scan(&perm.ID, &perm.AccountID, &perm.WaveID,
		&perm.MaxProperties, &perm.UsedProperties,
		&grantedBy, &perm.CreatedAt, &perm.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if grantedBy.Valid {
		perm.GrantedBy = grantedBy.UUID
	}

	return &perm, nil
}
