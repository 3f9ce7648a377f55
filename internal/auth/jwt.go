// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/models"
)

// Claims are the token claims the verifier understands. The subject is
// the account ID; role and allowed languages ride along so a request can
// be authorized without a store lookup. AccountExpiresAt mirrors the
// account record's validity window, which is distinct from the token's
// own exp.
type Claims struct {
	Role             string   `json:"role"`
	Languages        []string `json:"languages,omitempty"`
	AccountExpiresAt *int64   `json:"accountExpiresAt,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens. Issuance lives with the external
// authentication service; only HS256 verification happens here.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier from the auth configuration.
func NewVerifier(cfg *config.AuthConfig) (*Verifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &Verifier{secret: []byte(cfg.JWTSecret)}, nil
}

// Verify validates the token string and builds the Actor it represents.
// Signature, algorithm, token expiry, subject shape, role validity, and
// the account validity window are all checked here; a handler holding an
// Actor can trust every field.
func (v *Verifier) Verify(tokenString string) (*Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not an account id: %w", err)
	}
	if !models.ValidRole(claims.Role) {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	actor := &Actor{
		AccountID: accountID,
		Role:      models.Role(claims.Role),
		Languages: claims.Languages,
	}
	if claims.AccountExpiresAt != nil {
		exp := time.Unix(*claims.AccountExpiresAt, 0)
		actor.ExpiresAt = &exp
	}
	if actor.Expired(time.Now()) {
		return nil, fmt.Errorf("account expired")
	}
	return actor, nil
}

// Sign creates a token for the actor, valid for ttl. The server never
// calls this on the request path; it exists for tests and local token
// minting.
func (v *Verifier) Sign(actor *Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:      string(actor.Role),
		Languages: actor.Languages,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.AccountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if actor.ExpiresAt != nil {
		exp := actor.ExpiresAt.Unix()
		claims.AccountExpiresAt = &exp
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
