// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(newTestEnforcer(t))
	return svc
}

func TestServiceCan(t *testing.T) {
	svc := newTestService(t)

	if ok, err := svc.Can(models.RoleAgent, ObjectListings, ActionCreate); err != nil || !ok {
		t.Errorf("agent should create listings: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.Can(models.RoleCustomer, ObjectWaves, ActionManage); err != nil || ok {
		t.Errorf("customer must not manage waves: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.Can(models.RoleSuperAdmin, ObjectListings, ActionClear); err != nil || !ok {
		t.Errorf("super-admin should clear the catalog: ok=%v err=%v", ok, err)
	}
}

func TestCanModifyListing(t *testing.T) {
	svc := newTestService(t)

	owner := uuid.New()
	other := uuid.New()
	listing := &models.Listing{ID: uuid.New(), AccountID: owner}
	orphan := &models.Listing{ID: uuid.New()}

	tests := []struct {
		name      string
		accountID uuid.UUID
		role      models.Role
		listing   *models.Listing
		want      bool
	}{
		{"owner may modify", owner, models.RoleCustomer, listing, true},
		{"stranger may not", other, models.RoleCustomer, listing, false},
		{"stranger agent may not", other, models.RoleAgent, listing, false},
		{"admin may modify anything", other, models.RoleAdmin, listing, true},
		{"super-admin may modify anything", other, models.RoleSuperAdmin, listing, true},
		{"orphan only for privileged", owner, models.RoleCustomer, orphan, false},
		{"orphan for admin", other, models.RoleAdmin, orphan, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CanModifyListing(tt.accountID, tt.role, tt.listing); got != tt.want {
				t.Errorf("CanModifyListing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMayWriteLanguage(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name      string
		role      models.Role
		languages []string
		lang      string
		want      bool
	}{
		{"allowed language", models.RoleCustomer, []string{"en", "ar"}, "ar", true},
		{"language not granted", models.RoleCustomer, []string{"en"}, "ku", false},
		{"empty allow-list denies", models.RoleAgent, nil, "en", false},
		{"admin still bound by allow-list", models.RoleAdmin, []string{"en"}, "ku", false},
		{"super-admin writes any language", models.RoleSuperAdmin, nil, "ku", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.MayWriteLanguage(tt.role, tt.languages, tt.lang); got != tt.want {
				t.Errorf("MayWriteLanguage() = %v, want %v", got, tt.want)
			}
		})
	}
}
