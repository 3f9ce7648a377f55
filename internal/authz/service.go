// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package authz

import (
	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

// Objects the capability table speaks about.
const (
	ObjectListings    = "listings"
	ObjectWaves       = "waves"
	ObjectPermissions = "permissions"
	ObjectInquiries   = "inquiries"
	ObjectFavorites   = "favorites"
	ObjectAccounts    = "accounts"
)

// Actions the capability table speaks about.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionClear  = "clear"
	ActionManage = "manage"
)

// Service answers the authorization questions the handlers ask: whether a
// role holds a capability, whether an actor may touch a particular
// listing, and whether an actor may write a given language.
type Service struct {
	enforcer *Enforcer
}

// NewService wraps an enforcer.
func NewService(enforcer *Enforcer) *Service {
	return &Service{enforcer: enforcer}
}

// Can reports whether the role holds the (object, action) capability,
// directly or through role inheritance.
func (s *Service) Can(role models.Role, object, action string) (bool, error) {
	return s.enforcer.Enforce(string(role), object, action)
}

// CanModifyListing reports whether the actor may update or delete the
// listing: the owner may, and so may privileged roles. Orphaned listings
// (no owning account) are only touchable by privileged roles.
func (s *Service) CanModifyListing(accountID uuid.UUID, role models.Role, listing *models.Listing) bool {
	if role.IsPrivileged() {
		return true
	}
	return listing.AccountID != uuid.Nil && listing.AccountID == accountID
}

// MayWriteLanguage is the stateless language allow-list check. Super-admins
// may write any language; everyone else only their allowed set.
func (s *Service) MayWriteLanguage(role models.Role, languages []string, lang string) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	for _, l := range languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Close releases the underlying enforcer.
func (s *Service) Close() {
	s.enforcer.Close()
}
