// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("featured:6", []string{"a", "b"})
	v, ok := c.Get("featured:6")
	if !ok {
		t.Fatal("Get after Set returned !ok")
	}
	got, ok := v.([]string)
	if !ok || len(got) != 2 {
		t.Errorf("Get returned %v, want 2-element slice", v)
	}
}

func TestExpiration(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("short", 1, 10*time.Millisecond)

	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry expired before its TTL")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("entry still readable after TTL")
	}

	s := c.GetStats()
	if s.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", s.Evictions)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Delete returned ok")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Get after Clear returned ok")
	}
	if got := c.GetStats().TotalKeys; got != 0 {
		t.Errorf("TotalKeys after Clear = %d, want 0", got)
	}
}

func TestHitRate(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)

	c.Get("k")
	c.Get("k")
	c.Get("absent")

	if got := c.HitRate(); got < 66.0 || got > 67.0 {
		t.Errorf("HitRate = %.2f, want ~66.67", got)
	}
}

func TestGenerateKeyStable(t *testing.T) {
	type params struct {
		City  string
		Limit int
	}

	k1 := GenerateKey("search", params{City: "Erbil", Limit: 10})
	k2 := GenerateKey("search", params{City: "Erbil", Limit: 10})
	k3 := GenerateKey("search", params{City: "Duhok", Limit: 10})

	if k1 != k2 {
		t.Errorf("equal params produced different keys: %s vs %s", k1, k2)
	}
	if k1 == k3 {
		t.Error("different params produced the same key")
	}
}
