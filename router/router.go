// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/handlers"
	"github.com/danielhkuo/shared-friday/middleware"
)

func NewRouter(a *app.App) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(a)
	eventHandler := handlers.NewEventHandler(a)
	claimHandler := handlers.NewClaimHandler(a)
	presetHandler := handlers.NewPresetHandler(a)
	adminHandler := handlers.NewAdminHandler(a)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))

	// Events (reads are public, writes need an admin)
	mux.HandleFunc("GET /events", middleware.WithLogging(eventHandler.ListEvents))
	mux.HandleFunc("GET /events/active", middleware.WithLogging(eventHandler.GetActiveEvent))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("GET /share/{slug}", middleware.WithLogging(eventHandler.GetSharedEvent))
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("PUT /events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", middleware.WithLogging(eventHandler.DeleteEvent))

	// Menu items
	mux.HandleFunc("POST /events/{id}/items", middleware.WithLogging(eventHandler.AddItem))
	mux.HandleFunc("PUT /items/{id}", middleware.WithLogging(eventHandler.UpdateItem))
	mux.HandleFunc("DELETE /items/{id}", middleware.WithLogging(eventHandler.DeleteItem))

	// Claims
	mux.HandleFunc("POST /items/{id}/claim", middleware.WithLogging(claimHandler.ClaimItem))
	mux.HandleFunc("PATCH /assignments/{id}", middleware.WithLogging(claimHandler.UpdateAssignment))
	mux.HandleFunc("DELETE /assignments/{id}", middleware.WithLogging(claimHandler.CancelAssignment))
	mux.HandleFunc("PUT /assignments/{id}/claimant", middleware.WithLogging(claimHandler.ReplaceClaimant))
	mux.HandleFunc("GET /me/assignments", middleware.WithLogging(claimHandler.MyAssignments))

	// Preset lists
	mux.HandleFunc("GET /preset-lists", middleware.WithLogging(presetHandler.ListPresets))
	mux.HandleFunc("POST /preset-lists", middleware.WithLogging(presetHandler.CreatePreset))
	mux.HandleFunc("POST /events/{id}/presets/{presetId}", middleware.WithLogging(presetHandler.ApplyPreset))

	// Repair
	mux.HandleFunc("POST /admin/refresh", middleware.WithLogging(adminHandler.Refresh))
	mux.HandleFunc("POST /admin/cleanup-ghosts", middleware.WithLogging(adminHandler.CleanupGhosts))
	mux.HandleFunc("POST /admin/reconcile", middleware.WithLogging(adminHandler.Reconcile))
	mux.HandleFunc("DELETE /admin/users/{uid}", middleware.WithLogging(adminHandler.DeleteUser))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("shared-friday API v1"))
	})

	return mux
}
