// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/models"
)

type PresetHandler struct {
	app *app.App
}

func NewPresetHandler(a *app.App) *PresetHandler {
	return &PresetHandler{app: a}
}

// ListPresets handles GET /preset-lists
func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	lists, err := h.app.Catalog.PresetLists(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list preset lists")
		return
	}
	if lists == nil {
		lists = []models.PresetList{}
	}
	middleware.JSONResponse(w, http.StatusOK, lists)
}

// CreatePreset handles POST /preset-lists
func (h *PresetHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAdmin(w, r, h.app)
	if !ok {
		return
	}

	var req models.CreatePresetListRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	list, err := h.app.Catalog.CreatePresetList(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create preset list")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, list)
}

// ApplyPreset handles POST /events/{id}/presets/{presetId}
func (h *PresetHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	eventID, presetID := r.PathValue("id"), r.PathValue("presetId")
	items, err := h.app.Catalog.ApplyPreset(r.Context(), eventID, presetID)
	if err != nil {
		writeServiceError(w, r, err, "failed to apply preset", "event_id", eventID, "preset_id", presetID)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, items)
}
