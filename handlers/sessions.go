// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/models"
)

type SessionHandler struct {
	app *app.App
}

func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a}
}

// CreateSession handles POST /sessions. An empty body or display name
// creates an anonymous session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, middleware.ErrEmptyBody) {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

	user, err := h.app.Users.CreateUser(r.Context(), req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err, "failed to create session")
		return
	}

	slog.Info("session created", "uid", user.ID, "ip", middleware.GetClientIP(r))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		UserID: user.ID,
		Token:  auth.SignToken(user.ID, h.app.Config.SessionSalt),
	})
}
