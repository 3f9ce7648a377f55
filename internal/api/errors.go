// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"errors"
	"net/http"

	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

// respondStoreError maps store errors onto the envelope. Anything the
// mapping does not recognize is logged and answered with a generic 500
// so driver internals never leak to clients.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "resource not found", nil)
	case errors.Is(err, database.ErrQuotaExceeded):
		respondError(w, http.StatusForbidden, models.ErrCodeQuotaExceeded, "wave quota exhausted", nil)
	case errors.Is(err, database.ErrAlreadyExists):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "resource already exists", nil)
	default:
		logging.Error().Err(err).Msg("store operation failed")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal error", nil)
	}
}

// respondUnauthenticated answers a request that reached a gated handler
// without an actor.
func respondUnauthenticated(w http.ResponseWriter) {
	respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthenticated, "authentication required", nil)
}

// respondRoleDenied answers a request whose actor lacks the capability.
func respondRoleDenied(w http.ResponseWriter) {
	respondError(w, http.StatusForbidden, models.ErrCodeRoleDenied, "role does not permit this operation", nil)
}
