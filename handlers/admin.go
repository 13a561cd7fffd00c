// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/models"
)

// AdminHandler exposes the repair operations
type AdminHandler struct {
	app *app.App
}

func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{app: a}
}

// Refresh handles POST /admin/refresh
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	rep, err := h.app.Claims.ForceRefresh(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to refresh projection")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RefreshResponse{
		Events:      rep.Events,
		Items:       rep.Items,
		Assignments: rep.Assignments,
	})
}

// CleanupGhosts handles POST /admin/cleanup-ghosts
func (h *AdminHandler) CleanupGhosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	rep, err := h.app.Claims.CleanupGhostAssignments(r.Context(), h.app.Users)
	if err != nil {
		writeServiceError(w, r, err, "failed to clean up ghost assignments")
		return
	}
	ids := rep.RemovedIDs
	if ids == nil {
		ids = []string{}
	}
	middleware.JSONResponse(w, http.StatusOK, models.CleanupResponse{
		Removed:    len(ids),
		RemovedIDs: ids,
	})
}

// Reconcile handles POST /admin/reconcile
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	rep, err := h.app.Claims.ReconcilePointers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to reconcile pointers")
		return
	}
	resp := models.ReconcileResponse{
		ClearedPointers: rep.ClearedPointers,
		RemovedOrphans:  rep.RemovedOrphans,
	}
	if resp.ClearedPointers == nil {
		resp.ClearedPointers = []string{}
	}
	if resp.RemovedOrphans == nil {
		resp.RemovedOrphans = []string{}
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeleteUser handles DELETE /admin/users/{uid}. The registry enforces the
// admin check itself.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}

	uid := r.PathValue("uid")
	if err := h.app.Users.DeleteUser(r.Context(), caller, uid); err != nil {
		writeServiceError(w, r, err, "failed to delete user", "uid", uid)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
