// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Shared Friday API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(a)

# Endpoints

Health:

	GET /health

Sessions:

	POST /sessions - Issue a caller token

Events (reads public, writes admin):

	GET    /events         - List events
	GET    /events/active  - Active event with items and claims
	GET    /events/{id}    - Event with items and claims
	GET    /share/{slug}   - Same, by share slug
	POST   /events         - Create event
	PUT    /events/{id}    - Update event
	DELETE /events/{id}    - Delete event and everything under it

Items and claims (Authorization: Bearer <token>):

	POST   /events/{id}/items         - Add item (admin or participant)
	PUT    /items/{id}                - Edit item (admin)
	DELETE /items/{id}                - Delete item (admin)
	POST   /items/{id}/claim          - Claim item
	PATCH  /assignments/{id}          - Edit claim (owner or admin)
	DELETE /assignments/{id}          - Cancel claim (owner or admin)
	PUT    /assignments/{id}/claimant - Hand claim to someone else (admin)
	GET    /me/assignments            - Caller's claims

Preset lists:

	GET  /preset-lists                     - List presets
	POST /preset-lists                     - Create preset (admin)
	POST /events/{id}/presets/{presetId}   - Apply preset (admin)

Repair (admin):

	POST   /admin/refresh        - Rebuild projection from the store
	POST   /admin/cleanup-ghosts - Drop claims of deleted users
	POST   /admin/reconcile      - Fix pointer and ledger drift
	DELETE /admin/users/{uid}    - Delete a user

# Handler Initialization

Every handler shares the same *app.App:

	claimHandler := handlers.NewClaimHandler(a)
*/
package router
