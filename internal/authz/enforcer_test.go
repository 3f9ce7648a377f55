// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package authz

import (
	"testing"
	"time"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("create enforcer: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEmbeddedPolicyLoaded(t *testing.T) {
	e := newTestEnforcer(t)

	if len(e.GetPolicy()) == 0 {
		t.Fatal("embedded policy should contain capability rules")
	}
	if len(e.GetGroupingPolicy()) != 3 {
		t.Errorf("expected 3 role inheritance rules, got %d", len(e.GetGroupingPolicy()))
	}
}

func TestCapabilityTable(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		name    string
		subject string
		object  string
		action  string
		want    bool
	}{
		{"customer creates listings", "customer", "listings", "create", true},
		{"customer updates listings", "customer", "listings", "update", true},
		{"customer manages favorites", "customer", "favorites", "manage", true},
		{"customer reads own permissions", "customer", "permissions", "read", true},
		{"customer cannot clear the catalog", "customer", "listings", "clear", false},
		{"customer cannot manage waves", "customer", "waves", "manage", false},
		{"customer cannot grant permissions", "customer", "permissions", "manage", false},
		{"agent inherits customer capabilities", "agent", "listings", "create", true},
		{"agent cannot manage waves", "agent", "waves", "manage", false},
		{"admin manages waves", "admin", "waves", "manage", true},
		{"admin manages permissions", "admin", "permissions", "manage", true},
		{"admin clears the catalog", "admin", "listings", "clear", true},
		{"admin inherits listing creation", "admin", "listings", "create", true},
		{"super-admin inherits everything", "super-admin", "waves", "manage", true},
		{"super-admin creates listings", "super-admin", "listings", "create", true},
		{"unknown role has nothing", "ghost", "listings", "create", false},
		{"unknown object denies", "admin", "sitemaps", "manage", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Enforce(tt.subject, tt.object, tt.action)
			if err != nil {
				t.Fatalf("enforce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v",
					tt.subject, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforceCachesDecisions(t *testing.T) {
	e, err := NewEnforcer(&EnforcerConfig{CacheEnabled: true, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("create enforcer: %v", err)
	}
	t.Cleanup(e.Close)

	if allowed, err := e.Enforce("admin", "waves", "manage"); err != nil || !allowed {
		t.Fatalf("first enforce: allowed=%v err=%v", allowed, err)
	}
	if _, ok := e.cache.get("admin", "waves", "manage"); !ok {
		t.Error("decision should be cached after first enforcement")
	}
	// Cached path returns the same answer.
	if allowed, err := e.Enforce("admin", "waves", "manage"); err != nil || !allowed {
		t.Errorf("cached enforce: allowed=%v err=%v", allowed, err)
	}
}

func TestEnforcerWithoutCache(t *testing.T) {
	e, err := NewEnforcer(&EnforcerConfig{CacheEnabled: false})
	if err != nil {
		t.Fatalf("create enforcer: %v", err)
	}
	t.Cleanup(e.Close)

	if e.cache != nil {
		t.Error("cache should be nil when disabled")
	}
	if allowed, err := e.Enforce("customer", "listings", "create"); err != nil || !allowed {
		t.Errorf("enforce without cache: allowed=%v err=%v", allowed, err)
	}
}
