// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account's permission tier.
type Role string

// Account roles, lowest to highest privilege.
const (
	RoleCustomer   Role = "customer"
	RoleAgent      Role = "agent"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCustomer, RoleAgent, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may administer waves, permissions
// and other accounts' listings.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Account is a marketplace actor: a customer or agent who publishes
// listings, or an administrator. Authentication is external; this record
// only carries what authorization needs.
//
// Languages is the set of language tags the account may write listing data
// in. It is ignored for super-admins, who may write any language.
// ExpiresAt, when set, bounds the account's validity.
type Account struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Languages []string   `json:"allowedLanguages"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Expired reports whether the account's validity window has passed.
func (a *Account) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// MayWriteLanguage is the stateless language allow-list check: an account
// may write listing data only in one of its allowed languages, except
// super-admins who may write any language.
func (a *Account) MayWriteLanguage(lang string) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	for _, l := range a.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
