// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package quota is the wave quota ledger. A wave is a named quota policy;
// an account publishes listings under a wave through a grant that pairs a
// ceiling (maxProperties) with a consumption counter (usedProperties).
// Reserve consumes one slot atomically: concurrent reserves against the
// same grant never push the counter past the ceiling, and a denied
// reserve leaves the counters untouched.
package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/models"
)

// Ledger coordinates wave grants on top of the store.
type Ledger struct {
	db *database.DB
}

// NewLedger creates a quota ledger backed by db.
func NewLedger(db *database.DB) *Ledger {
	return &Ledger{db: db}
}

// Grant creates a grant binding an account to a wave. The wave must
// exist, and an (account, wave) pair can hold at most one grant.
func (l *Ledger) Grant(ctx context.Context, perm *models.WavePermission) error {
	if perm.MaxProperties < 0 {
		return errors.New("max properties must not be negative")
	}
	if _, err := l.db.GetWave(ctx, perm.WaveID); err != nil {
		return err
	}

	if err := l.db.GrantWavePermission(ctx, perm); err != nil {
		return err
	}

	logging.Info().
		Str("account_id", perm.AccountID.String()).
		Str("wave_id", perm.WaveID.String()).
		Int("max_properties", perm.MaxProperties).
		Msg("wave permission granted")

	return nil
}

// SetMax changes a grant's ceiling. Lowering it below the consumed count
// is rejected with database.ErrQuotaExceeded.
func (l *Ledger) SetMax(ctx context.Context, accountID, waveID uuid.UUID, maxProperties int) error {
	if maxProperties < 0 {
		return errors.New("max properties must not be negative")
	}
	return l.db.UpdateWavePermissionMax(ctx, accountID, waveID, maxProperties)
}

// Revoke removes a grant. Revoking a grant that does not exist returns
// database.ErrNotFound.
func (l *Ledger) Revoke(ctx context.Context, accountID, waveID uuid.UUID) error {
	if err := l.db.RevokeWavePermission(ctx, accountID, waveID); err != nil {
		return err
	}

	logging.Info().
		Str("account_id", accountID.String()).
		Str("wave_id", waveID.String()).
		Msg("wave permission revoked")

	return nil
}

// Reserve consumes one publishing slot from the account's grant on the
// wave. On success the consumption counter has moved up by exactly one;
// on denial nothing has changed and the error states why.
func (l *Ledger) Reserve(ctx context.Context, accountID, waveID uuid.UUID) error {
	err := l.db.ReserveWaveSlot(ctx, accountID, waveID)
	switch {
	case err == nil:
		metrics.RecordReservation(false)
		return nil
	case errors.Is(err, database.ErrQuotaExceeded):
		metrics.RecordReservation(true)
		logging.Debug().
			Str("account_id", accountID.String()).
			Str("wave_id", waveID.String()).
			Msg("wave quota exhausted")
		return err
	default:
		return err
	}
}

// Release hands back a slot taken by Reserve when the write it was
// reserved for failed. Slots consumed by a published listing are never
// refunded; this only unwinds a reserve whose listing never landed.
func (l *Ledger) Release(ctx context.Context, accountID, waveID uuid.UUID) error {
	if err := l.db.ReleaseWaveSlot(ctx, accountID, waveID); err != nil {
		return err
	}

	logging.Debug().
		Str("account_id", accountID.String()).
		Str("wave_id", waveID.String()).
		Msg("wave slot released after failed publish")

	return nil
}

// Permission returns the grant for an (account, wave) pair.
func (l *Ledger) Permission(ctx context.Context, accountID, waveID uuid.UUID) (*models.WavePermission, error) {
	return l.db.GetWavePermission(ctx, accountID, waveID)
}

// Permissions returns every grant held by an account.
func (l *Ledger) Permissions(ctx context.Context, accountID uuid.UUID) ([]models.WavePermission, error) {
	return l.db.ListAccountPermissions(ctx, accountID)
}
