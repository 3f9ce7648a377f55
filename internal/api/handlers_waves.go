// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kardolabs/estatesync/internal/authz"
	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/models"
)

// handleListWaves is GET /api/v1/waves.
func (rt *Router) handleListWaves(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectWaves, authz.ActionManage) {
		return
	}

	waves, err := rt.db.ListWaves(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, waves)
}

// handleCreateWave is POST /api/v1/waves.
func (rt *Router) handleCreateWave(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectWaves, authz.ActionManage) {
		return
	}

	var req WaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wave := &models.Wave{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := rt.db.CreateWave(r.Context(), wave); err != nil {
		respondStoreError(w, err)
		return
	}

	respondCreated(w, wave)
}

// handleGetWave is GET /api/v1/waves/{id}.
func (rt *Router) handleGetWave(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectWaves, authz.ActionManage) {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	wave, err := rt.db.GetWave(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, wave)
}

// handleUpdateWave is PUT /api/v1/waves/{id}.
func (rt *Router) handleUpdateWave(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectWaves, authz.ActionManage) {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req WaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wave, err := rt.db.GetWave(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	wave.Name = req.Name
	wave.Description = req.Description

	if err := rt.db.UpdateWave(r.Context(), wave); err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, wave)
}

// handleDeleteWave is DELETE /api/v1/waves/{id}. Deleting a wave drops
// its grants with it; listings already published stay.
func (rt *Router) handleDeleteWave(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectWaves, authz.ActionManage) {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := rt.db.DeleteWave(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, models.DeletedData{ID: id.String()})
}

// handleGrantPermission is POST /api/v1/waves/{id}/permissions: binds an
// account to the wave with a publishing ceiling.
func (rt *Router) handleGrantPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectPermissions, authz.ActionManage) {
		return
	}
	waveID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req GrantPermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accountID := uuid.MustParse(req.AccountID) // format enforced by validation

	perm := &models.WavePermission{
		AccountID:     accountID,
		WaveID:        waveID,
		MaxProperties: req.MaxProperties,
		GrantedBy:     actor.AccountID,
	}

	if err := rt.ledger.Grant(r.Context(), perm); err != nil {
		respondStoreError(w, err)
		return
	}

	respondCreated(w, perm)
}

// handleUpdatePermission is PUT /api/v1/waves/{id}/permissions/{accountID}:
// changes the grant's ceiling. Lowering it below the consumed count is
// rejected.
func (rt *Router) handleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectPermissions, authz.ActionManage) {
		return
	}
	waveID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	var req UpdatePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := rt.ledger.SetMax(r.Context(), accountID, waveID, req.MaxProperties); err != nil {
		if errors.Is(err, database.ErrQuotaExceeded) {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
				"ceiling would fall below the consumed count", map[string]interface{}{
					"maxProperties": req.MaxProperties,
				})
			return
		}
		respondStoreError(w, err)
		return
	}

	perm, err := rt.ledger.Permission(r.Context(), accountID, waveID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, perm)
}

// handleRevokePermission is DELETE /api/v1/waves/{id}/permissions/{accountID}.
func (rt *Router) handleRevokePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !rt.requireCapability(w, actor, authz.ObjectPermissions, authz.ActionManage) {
		return
	}
	waveID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "accountID")
	if !ok {
		return
	}

	if err := rt.ledger.Revoke(r.Context(), accountID, waveID); err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, models.DeletedData{ID: accountID.String()})
}

// handleAccountPermissions is GET /api/v1/accounts/{id}/permissions.
// An account may read its own grants; reading another account's grants
// needs a privileged role.
func (rt *Router) handleAccountPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	accountID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if accountID != actor.AccountID && !actor.Privileged() {
		respondRoleDenied(w)
		return
	}

	perms, err := rt.ledger.Permissions(r.Context(), accountID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, perms)
}
