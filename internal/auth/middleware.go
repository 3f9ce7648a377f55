// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

// Middleware resolves the request's Actor from a bearer token.
//
// A request without an Authorization header passes through without an
// actor; public endpoints (catalog query, streams, inquiry creation)
// accept that, and gated handlers reject it with 401. A header that is
// present but invalid is rejected here, so a handler never sees a
// half-verified identity.
//
// With disabled set, every request acts as a super-admin. Local
// development only.
func Middleware(verifier *Verifier, disabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if disabled {
				ctx := WithActor(r.Context(), &Actor{Role: models.RoleSuperAdmin})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeUnauthenticated(w, "authorization header must be a bearer token")
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				logging.Debug().Err(err).Msg("bearer token rejected")
				writeUnauthenticated(w, "invalid or expired token")
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    models.ErrCodeUnauthenticated,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode auth error response")
	}
}
