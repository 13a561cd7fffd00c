// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package claims implements item claiming and keeps the two records that say
"who brings this" in step: the assigned_to pointer on a menu item and the
entry in the assignments ledger.

# Claiming

	id, err := svc.Claim(ctx, claims.ClaimRequest{
		MenuItemID: itemID,
		UserID:     uid,
		UserName:   "Alice",
		Quantity:   2,
	})

Claim runs in two phases. Phase one is a conditional transaction on the
menu item that sets the pointer only when nobody holds it; losing that race
yields ErrAlreadyClaimedByOther, holding it already yields
ErrDuplicateClaim. Phase two pushes the ledger entry. When phase two fails
the pointer is released again (only if it still names the claimant) and
ErrLedgerWriteFailed is returned.

An item has at most one live ledger entry: the pointer admits one holder,
and ReconcilePointers removes entries that disagree with it.

# Lifecycle

	UpdateClaim      quantity and notes, pointer untouched
	CancelClaim      ledger entry first, then the pointer
	ReplaceClaimant  rewrites both records unconditionally (admin)

# Repair

	ForceRefresh             rebuild the projection from the store
	CleanupGhostAssignments  drop entries whose user no longer exists
	ReconcilePointers        clear stale pointers, drop orphan entries

Repairs continue past individual failures and return them joined.
*/
package claims
