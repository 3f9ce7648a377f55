// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by every HTTP
// endpoint, for both success and error payloads.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "QUOTA_EXCEEDED",
//	    "message": "wave quota exhausted",
//	    "details": {"wave_id": "..."}
//	  },
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields: generation time, query
// execution time, and whether the payload was served from a conditional
// cache revalidation.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// Machine-readable API error codes. Callers branch on Code, not Message:
// the three authorization failures are deliberately distinct so a client
// can react differently to a missing role, an exhausted quota, and a
// disallowed language.
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeRoleDenied           = "ROLE_DENIED"
	ErrCodeQuotaExceeded        = "QUOTA_EXCEEDED"
	ErrCodeLanguageNotPermitted = "LANGUAGE_NOT_PERMITTED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// APIError is the error body carried when Status is "error".
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
