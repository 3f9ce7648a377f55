// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/models"
)

// writeJSON writes the envelope with proper headers. Encoding failures
// are logged; at that point the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondSuccess writes a 200 success envelope around data.
func respondSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondCreated writes a 201 success envelope around data.
func respondCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondTimed writes a 200 success envelope with the query duration in
// the metadata, measured from start.
func respondTimed(w http.ResponseWriter, data interface{}, start time.Time, cached bool) {
	writeJSON(w, http.StatusOK, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError writes an error envelope with the given status and code.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeJSON(w, status, models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondAPIError writes a prebuilt API error, used for validation
// failures that already carry field details.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	writeJSON(w, status, models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// etagFor computes a weak validator over the payload bytes. FNV-1a is
// not collision-proof, but a spurious 304 only costs one stale read on a
// read-mostly endpoint and the hash is cheap enough to run per request.
func etagFor(body []byte) string {
	h := fnv.New64a()
	h.Write(body) //nolint:errcheck // hash.Hash.Write never fails
	return fmt.Sprintf(`"%x"`, h.Sum64())
}

// respondCacheable writes a 200 success envelope with an ETag computed
// over the data payload. When the client presents a matching
// If-None-Match, the response is a bodiless 304 instead. endpoint labels
// the conditional-hit metric.
func respondCacheable(w http.ResponseWriter, r *http.Request, endpoint string, data interface{}, start time.Time, cached bool) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Str("endpoint", endpoint).Msg("failed to marshal payload")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal error", nil)
		return
	}

	etag := etagFor(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, must-revalidate")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		metrics.APIConditionalHits.WithLabelValues(endpoint).Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	respondTimed(w, json.RawMessage(body), start, cached)
}
