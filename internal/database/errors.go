// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package database

import (
	"errors"
	"strings"
)

// Store sentinel errors. Callers branch with errors.Is; the API layer maps
// them to machine-readable error codes.
var (
	// ErrNotFound indicates the requested entity or permission does not
	// exist. Revoking a missing wave permission or removing a missing
	// favorite returns this, never a silent success.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded indicates a wave grant has no remaining publishing
	// capacity. A denied reserve leaves the counters untouched.
	ErrQuotaExceeded = errors.New("wave quota exceeded")

	// ErrAlreadyExists indicates a uniqueness conflict, such as granting a
	// wave permission to an account that already holds one for that wave.
	ErrAlreadyExists = errors.New("already exists")
)

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// DuckDB unique constraint error messages contain "unique constraint"
	// or "duplicate key" depending on the code path.
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}
