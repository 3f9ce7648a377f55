// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
)

// healthCheckTimeout bounds the store ping so a wedged database cannot
// hang the health endpoint.
const healthCheckTimeout = 500 * time.Millisecond

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Subscribers int    `json:"subscribers"`
}

// handleHealth is GET /api/v1/health. Degraded health answers 503 so
// orchestrators stop routing to this instance.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := HealthStatus{
		Status:      "ok",
		Database:    "up",
		Subscribers: rt.hub.SubscriberCount(),
	}

	if err := rt.db.Ping(ctx); err != nil {
		logging.Error().Err(err).Msg("health check database ping failed")
		status.Status = "degraded"
		status.Database = "down"
		writeJSON(w, http.StatusServiceUnavailable, models.APIResponse{
			Status:   "success",
			Data:     status,
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		})
		return
	}

	respondSuccess(w, status)
}
