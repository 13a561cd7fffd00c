// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

The same JSON encoding is used on the wire and for documents in the record
store, so field names are shared between the two.

# Request Types

  - CreateSessionRequest: display_name
  - CreateEventRequest / UpdateEventRequest
  - AddMenuItemRequest / UpdateMenuItemRequest
  - ClaimItemRequest: quantity, notes, phone
  - UpdateAssignmentRequest: quantity, notes
  - ReplaceClaimantRequest: user_id, user_name
  - CreatePresetListRequest

# Domain Types

  - Event: a Friday gathering; at most one is active in the simple flow
  - MenuItem: something to bring, with the cached claim pointer
    (assigned_to, assigned_to_name, assigned_at)
  - Assignment: the ledger entry recording who brings what and how much
  - Admin: uid-keyed admin flag record
  - User: known identity (including anonymous sessions)
  - PresetList: reusable list of menu items

# Constants

Categories:

	CategoryStarter, CategoryMain, CategoryDessert, CategoryDrink, CategoryOther

Assignment status:

	StatusPending, StatusConfirmed, StatusCompleted

Quantity bounds:

	MinQuantity = 1
	MaxQuantity = 100
*/
package models
