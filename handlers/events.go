// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/catalog"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/models"
)

type EventHandler struct {
	app *app.App
}

func NewEventHandler(a *app.App) *EventHandler {
	return &EventHandler{app: a}
}

// details assembles an event with its items and ledger entries from the
// projection
func (h *EventHandler) details(ev models.Event) models.EventDetails {
	items := h.app.Proj.ItemsForEvent(ev.ID)
	if items == nil {
		items = []models.MenuItem{}
	}
	assignments := h.app.Proj.AssignmentsForEvent(ev.ID)
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return models.EventDetails{Event: ev, Items: items, Assignments: assignments}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := h.app.Proj.Events()
	if events == nil {
		events = []models.Event{}
	}
	middleware.JSONResponse(w, http.StatusOK, events)
}

// GetActiveEvent handles GET /events/active
func (h *EventHandler) GetActiveEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.app.Proj.ActiveEvent()
	if !ok {
		middleware.LocalizedError(w, r, http.StatusNotFound, i18n.MsgNoActiveEvent)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.details(ev))
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.app.Proj.Event(r.PathValue("id"))
	if !ok {
		middleware.LocalizedError(w, r, http.StatusNotFound, i18n.MsgEventNotFound)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.details(ev))
}

// GetSharedEvent handles GET /share/{slug}
func (h *EventHandler) GetSharedEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.app.Proj.EventBySlug(r.PathValue("slug"))
	if !ok {
		middleware.LocalizedError(w, r, http.StatusNotFound, i18n.MsgEventNotFound)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.details(ev))
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireAdmin(w, r, h.app)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	ev, err := h.app.Catalog.CreateEvent(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create event")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, ev)
}

// UpdateEvent handles PUT /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	id := r.PathValue("id")
	ev, err := h.app.Catalog.UpdateEvent(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update event", "event_id", id)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.app.Catalog.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete event", "event_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /events/{id}/items. Admins add organizer items;
// anyone else goes through the participant path and may claim the new
// item in the same request.
func (h *EventHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireCaller(w, r, h.app)
	if !ok {
		return
	}

	var req models.AddMenuItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}
	eventID := r.PathValue("id")

	if h.app.Gate.IsAdmin(r.Context(), uid) {
		item, err := h.app.Catalog.AddMenuItem(r.Context(), eventID, req, catalog.Creator{})
		if err != nil {
			writeServiceError(w, r, err, "failed to add menu item", "event_id", eventID)
			return
		}
		middleware.JSONResponse(w, http.StatusCreated, models.AddMenuItemResponse{Item: item})
		return
	}

	if limit := h.app.Config.MaxParticipantQuantity; req.Quantity > limit {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgParticipantItemLimit, limit)
		return
	}

	user, err := h.app.Users.User(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "failed to look up participant", "uid", uid)
		return
	}

	item, claimID, err := h.app.Catalog.AddParticipantItem(r.Context(), eventID, req, catalog.Creator{
		ID:   uid,
		Name: user.DisplayName,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to add participant item", "event_id", eventID, "uid", uid)
		return
	}

	slog.Info("participant item added", "item_id", item.ID, "uid", uid, "claimed", claimID != "")
	middleware.JSONResponse(w, http.StatusCreated, models.AddMenuItemResponse{
		Item:         item,
		AssignmentID: claimID,
	})
}

// UpdateItem handles PUT /items/{id}
func (h *EventHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	var req models.UpdateMenuItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	id := r.PathValue("id")
	item, err := h.app.Catalog.UpdateMenuItem(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update menu item", "item_id", id)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id}
func (h *EventHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.app); !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.app.Catalog.DeleteMenuItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete menu item", "item_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
