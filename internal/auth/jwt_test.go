// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(&config.AuthConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("create verifier: %v", err)
	}
	return v
}

func TestNewVerifierRejectsShortSecret(t *testing.T) {
	if _, err := NewVerifier(&config.AuthConfig{JWTSecret: "short"}); err == nil {
		t.Error("expected error for a short secret")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	v := newTestVerifier(t)
	want := &Actor{
		AccountID: uuid.New(),
		Role:      models.RoleAgent,
		Languages: []string{"en", "ar"},
	}

	token, err := v.Sign(want, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.AccountID != want.AccountID {
		t.Errorf("account id = %s, want %s", got.AccountID, want.AccountID)
	}
	if got.Role != models.RoleAgent {
		t.Errorf("role = %s, want agent", got.Role)
	}
	if len(got.Languages) != 2 || got.Languages[0] != "en" {
		t.Errorf("languages round trip failed: %v", got.Languages)
	}
	if got.ExpiresAt != nil {
		t.Error("actor without account expiry should have nil ExpiresAt")
	}
}

func TestVerifyRejections(t *testing.T) {
	v := newTestVerifier(t)
	validID := uuid.New()

	expiredAccount := time.Now().Add(-time.Hour).Unix()
	futureAccount := time.Now().Add(time.Hour).Unix()

	sign := func(t *testing.T, claims *Claims, secret string) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign test token: %v", err)
		}
		return signed
	}

	baseClaims := func(mutate func(*Claims)) *Claims {
		c := &Claims{
			Role: string(models.RoleCustomer),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   validID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
		if mutate != nil {
			mutate(c)
		}
		return c
	}

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{
			"garbage token",
			"not.a.token",
			"parse token",
		},
		{
			"wrong secret",
			sign(t, baseClaims(nil), "ffffffffffffffffffffffffffffffff"),
			"parse token",
		},
		{
			"expired token",
			sign(t, baseClaims(func(c *Claims) {
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			}), testSecret),
			"parse token",
		},
		{
			"subject not a uuid",
			sign(t, baseClaims(func(c *Claims) { c.Subject = "account-7" }), testSecret),
			"not an account id",
		},
		{
			"unknown role",
			sign(t, baseClaims(func(c *Claims) { c.Role = "owner" }), testSecret),
			"unknown role",
		},
		{
			"expired account",
			sign(t, baseClaims(func(c *Claims) { c.AccountExpiresAt = &expiredAccount }), testSecret),
			"account expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if err == nil {
				t.Fatal("expected verification to fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}

	t.Run("future account expiry passes", func(t *testing.T) {
		token := sign(t, baseClaims(func(c *Claims) { c.AccountExpiresAt = &futureAccount }), testSecret)
		actor, err := v.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if actor.ExpiresAt == nil {
			t.Error("actor should carry the account expiry")
		}
	})
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	v := newTestVerifier(t)

	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := v.Verify(signed); err == nil {
		t.Error("alg=none token must be rejected")
	}
}
