// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"

	"github.com/google/uuid"
)

// Wave is a named quota policy. It carries no counters itself; it is the
// type of quota under which publishing capacity is granted per account
// through WavePermission rows.
type Wave struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WavePermission binds one account to one wave with a max/used counter
// pair. Invariant: UsedProperties <= MaxProperties at all times; the store
// enforces this with an atomic compare-and-increment on reserve.
//
// UsedProperties only moves upward as a side effect of listing creation
// under the wave. It is never decremented automatically; raising
// MaxProperties is the administrative remedy for reclaimed capacity.
type WavePermission struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"accountId"`
	WaveID         uuid.UUID `json:"waveId"`
	MaxProperties  int       `json:"maxProperties"`
	UsedProperties int       `json:"usedProperties"`
	GrantedBy      uuid.UUID `json:"grantedBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Remaining returns the unconsumed publishing capacity of the grant.
func (p *WavePermission) Remaining() int {
	if p.UsedProperties >= p.MaxProperties {
		return 0
	}
	return p.MaxProperties - p.UsedProperties
}
