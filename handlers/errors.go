// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/catalog"
	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/middleware"
)

// errorMapping ties a service error to its status and message key
type errorMapping struct {
	err    error
	status int
	msg    string
}

var errorTable = []errorMapping{
	{claims.ErrItemNotFound, http.StatusNotFound, i18n.MsgItemNotFound},
	{claims.ErrClaimNotFound, http.StatusNotFound, i18n.MsgClaimNotFound},
	{catalog.ErrEventNotFound, http.StatusNotFound, i18n.MsgEventNotFound},
	{catalog.ErrPresetNotFound, http.StatusNotFound, i18n.MsgPresetNotFound},
	{auth.ErrUnknownUser, http.StatusNotFound, i18n.MsgUserNotFound},
	{claims.ErrAlreadyClaimedByOther, http.StatusConflict, i18n.MsgAlreadyClaimed},
	{claims.ErrDuplicateClaim, http.StatusConflict, i18n.MsgDuplicateClaim},
	{claims.ErrInvalidQuantity, http.StatusBadRequest, i18n.MsgInvalidQuantity},
	{claims.ErrInvalidClaimant, http.StatusBadRequest, i18n.MsgInvalidClaimant},
	{claims.ErrNothingToUpdate, http.StatusBadRequest, i18n.MsgNothingToUpdate},
	{catalog.ErrNothingToUpdate, http.StatusBadRequest, i18n.MsgNothingToUpdate},
	{catalog.ErrInvalidItem, http.StatusBadRequest, i18n.MsgInvalidItem},
	{catalog.ErrInvalidEvent, http.StatusBadRequest, i18n.MsgInvalidEvent},
	{catalog.ErrInvalidPreset, http.StatusBadRequest, i18n.MsgInvalidPreset},
	{auth.ErrPermissionDenied, http.StatusForbidden, i18n.MsgForbidden},
	{auth.ErrMissingToken, http.StatusUnauthorized, i18n.MsgUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized, i18n.MsgUnauthorized},
	{claims.ErrLedgerWriteFailed, http.StatusInternalServerError, i18n.MsgClaimFailed},
}

// writeServiceError maps a service error to a localized response. Anything
// unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string, attrs ...any) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				slog.Error(logMsg, append([]any{"error", err}, attrs...)...)
			}
			middleware.LocalizedError(w, r, m.status, m.msg)
			return
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		slog.Warn(logMsg, append([]any{"error", err}, attrs...)...)
		middleware.LocalizedError(w, r, http.StatusServiceUnavailable, i18n.MsgInternal)
		return
	}

	slog.Error(logMsg, append([]any{"error", err}, attrs...)...)
	middleware.LocalizedError(w, r, http.StatusInternalServerError, i18n.MsgInternal)
}

// requireCaller resolves the bearer token and checks the identity is still
// registered. On failure it writes a response and returns false.
func requireCaller(w http.ResponseWriter, r *http.Request, a *app.App) (string, bool) {
	uid, err := auth.CallerFromRequest(r, a.Config.SessionSalt)
	if err != nil {
		middleware.LocalizedError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
		return "", false
	}
	if _, err := a.Users.User(r.Context(), uid); err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			slog.Warn("token for deleted user", "uid", uid, "path", r.URL.Path)
			middleware.LocalizedError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
			return "", false
		}
		writeServiceError(w, r, err, "failed to resolve caller", "uid", uid)
		return "", false
	}
	return uid, true
}

// requireAdmin resolves the caller and checks the admin gate. On failure
// it writes 401 or 403 and returns false.
func requireAdmin(w http.ResponseWriter, r *http.Request, a *app.App) (string, bool) {
	uid, ok := requireCaller(w, r, a)
	if !ok {
		return "", false
	}
	if err := a.Gate.RequireAdmin(r.Context(), uid); err != nil {
		slog.Warn("admin check failed", "uid", uid, "path", r.URL.Path)
		middleware.LocalizedError(w, r, http.StatusForbidden, i18n.MsgForbidden)
		return "", false
	}
	return uid, true
}
