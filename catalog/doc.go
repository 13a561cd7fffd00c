// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog manages events, menu items and preset lists.
//
// Only one event is meant to be active at a time: creating or updating an
// event with is_active set deactivates the rest. Deletes cascade from event
// to items to ledger entries, ledger first. Claiming goes through package
// claims, including the participant "add and bring it myself" path.
package catalog
