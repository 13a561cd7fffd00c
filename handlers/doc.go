// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Shared Friday API.

# Handler Types

Each handler is a struct holding the shared *app.App:

  - SessionHandler: issues caller tokens
  - EventHandler: events and their menu items
  - ClaimHandler: claiming, editing and cancelling items
  - PresetHandler: reusable item lists
  - AdminHandler: projection refresh and claim repair

Handlers are created via constructor functions:

	claimHandler := handlers.NewClaimHandler(a)

# Callers

Every write needs Authorization: Bearer <token>, where the token comes
from POST /sessions. Organizer writes also need an active admin record.

# Claim Flow

	POST   /items/{id}/claim         → ClaimItem (409 if taken)
	PATCH  /assignments/{id}         → UpdateAssignment (owner or admin)
	DELETE /assignments/{id}         → CancelAssignment (owner or admin)
	PUT    /assignments/{id}/claimant → ReplaceClaimant (admin)

Claims and cancels by the same caller on the same item are throttled by
the configured cooldown and answered with 429 and Retry-After.

# Errors

Service errors map to a status and a message in the caller's language,
Hebrew unless ?lang= or Accept-Language asks for English.
*/
package handlers
