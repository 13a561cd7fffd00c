// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request with method, path, status, remote address and
duration_ms. 5xx responses log at error level.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, PUT, PATCH, DELETE, OPTIONS with headers Content-Type,
Authorization and Accept-Language.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.LocalizedError(w, r, http.StatusConflict, i18n.MsgAlreadyClaimed)

LocalizedError picks Hebrew or English from ?lang= or Accept-Language.

	var req models.ClaimItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.LocalizedError(w, r, http.StatusBadRequest, i18n.MsgInvalidJSON)
		return
	}

Bodies are capped at MaxBodyBytes.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
