// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/models"
)

type ClaimHandler struct {
	app      *app.App
	cooldown *Cooldown
}

func NewClaimHandler(a *app.App) *ClaimHandler {
	return &ClaimHandler{
		app:      a,
		cooldown: NewCooldown(a.Config.ClaimCooldown),
	}
}

// throttle applies the per caller and item cooldown. It writes 429 and
// returns false when the caller has to wait.
func (h *ClaimHandler) throttle(w http.ResponseWriter, r *http.Request, uid, itemID string) bool {
	ok, wait := h.cooldown.Allow(uid + ":" + itemID)
	if ok {
		return true
	}
	secs := int(math.Ceil(wait.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	slog.Warn("claim throttled", "uid", uid, "item_id", itemID, "wait_seconds", secs)
	middleware.LocalizedError(w, r, http.StatusTooManyRequests, i18n.MsgTooManyRequests)
	return false
}

// ClaimItem handles POST /items/{id}/claim
func (h *ClaimHandler) ClaimItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}
	itemID := r.PathValue("id")

	var req models.ClaimItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, middleware.ErrEmptyBody) {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if !h.throttle(w, r, uid, itemID) {
		return
	}

	name := req.UserName
	if name == "" {
		user, err := h.app.Users.User(r.Context(), uid)
		if err != nil {
			writeServiceError(w, r, err, "failed to look up claimant", "uid", uid)
			return
		}
		name = user.DisplayName
	}

	claimID, err := h.app.Claims.Claim(r.Context(), claims.ClaimRequest{
		MenuItemID: itemID,
		UserID:     uid,
		UserName:   name,
		Phone:      req.Phone,
		Quantity:   quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to claim item", "item_id", itemID, "uid", uid)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ClaimItemResponse{AssignmentID: claimID})
}

// ownedAssignment loads a ledger entry and checks that the caller holds it
// or is an admin. It writes the error response itself.
func (h *ClaimHandler) ownedAssignment(w http.ResponseWriter, r *http.Request, uid, id string) (models.Assignment, bool) {
	a, err := h.app.Claims.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to load assignment", "assignment_id", id)
		return models.Assignment{}, false
	}
	if a.UserID != uid && !h.app.Gate.IsAdmin(r.Context(), uid) {
		middleware.LocalizedError(w, r, http.StatusForbidden, i18n.MsgNotOwner)
		return models.Assignment{}, false
	}
	return a, true
}

// UpdateAssignment handles PATCH /assignments/{id}
func (h *ClaimHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}

	var req models.UpdateAssignmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	id := r.PathValue("id")
	if _, ok := h.ownedAssignment(w, r, uid, id); !ok {
		return
	}

	err := h.app.Claims.UpdateClaim(r.Context(), id, claims.ClaimUpdate{
		Quantity: req.Quantity,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update assignment", "assignment_id", id)
		return
	}

	a, err := h.app.Claims.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to reload assignment", "assignment_id", id)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, a)
}

// CancelAssignment handles DELETE /assignments/{id}
func (h *ClaimHandler) CancelAssignment(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}

	id := r.PathValue("id")
	a, ok := h.ownedAssignment(w, r, uid, id)
	if !ok {
		return
	}
	if !h.throttle(w, r, uid, a.MenuItemID) {
		return
	}

	if err := h.app.Claims.CancelClaim(r.Context(), id, a.MenuItemID); err != nil {
		writeServiceError(w, r, err, "failed to cancel assignment", "assignment_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceClaimant handles PUT /assignments/{id}/claimant
func (h *ClaimHandler) ReplaceClaimant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	var req models.ReplaceClaimantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	id := r.PathValue("id")
	if err := h.app.Claims.ReplaceClaimant(r.Context(), id, req.UserID, req.UserName); err != nil {
		writeServiceError(w, r, err, "failed to replace claimant", "assignment_id", id)
		return
	}

	a, err := h.app.Claims.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to reload assignment", "assignment_id", id)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, a)
}

// MyAssignments handles GET /me/assignments
func (h *ClaimHandler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}

	mine := h.app.Proj.AssignmentsForUser(uid)
	resp := models.MyAssignmentsResponse{Assignments: make([]models.MyAssignment, 0, len(mine))}
	for _, a := range mine {
		entry := models.MyAssignment{Assignment: a}
		if item, ok := h.app.Proj.Item(a.MenuItemID); ok {
			entry.ItemName = item.Name
		}
		if !a.AssignedAt.IsZero() {
			entry.AssignedAgo = humanize.RelTime(a.AssignedAt, time.Now(), "ago", "from now")
		}
		resp.Assignments = append(resp.Assignments, entry)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
