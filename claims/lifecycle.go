// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// UpdateClaim changes quantity and/or notes on a ledger entry. The menu
// item pointer is never touched here.
func (s *Service) UpdateClaim(ctx context.Context, claimID string, upd ClaimUpdate) error {
	if upd.Quantity == nil && upd.Notes == nil {
		return ErrNothingToUpdate
	}
	if upd.Quantity != nil {
		if err := ValidateQuantity(*upd.Quantity); err != nil {
			return err
		}
	}

	fields := recordstore.Document{
		"updated_at": s.now().UTC().Format(time.RFC3339Nano),
	}
	if upd.Quantity != nil {
		fields["quantity"] = *upd.Quantity
	}
	if upd.Notes != nil {
		if notes := strings.TrimSpace(*upd.Notes); notes != "" {
			fields["notes"] = notes
		} else {
			fields["notes"] = nil
		}
	}

	err := s.store.Update(ctx, models.CollectionAssignments, claimID, fields)
	if errors.Is(err, recordstore.ErrNotFound) {
		return ErrClaimNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
	}

	s.proj.PatchOne(models.CollectionAssignments, claimID, fields)
	s.log.Info("claim updated", "assignment_id", claimID)
	return nil
}

// CancelClaim deletes the ledger entry and then clears the item pointer.
//
// The order matters: if the second write fails we are left with a stale
// pointer and no ledger entry, which ReconcilePointers can find. The
// reverse order could strand an invisible ledger entry.
func (s *Service) CancelClaim(ctx context.Context, claimID, menuItemID string) error {
	// The claimant is read first so the pointer is only cleared if it still
	// belongs to them. A missing entry falls back to clearing unconditionally.
	var claimant string
	if a, err := s.getAssignment(ctx, claimID); err == nil {
		claimant = a.UserID
		if menuItemID == "" {
			menuItemID = a.MenuItemID
		}
	} else if !errors.Is(err, ErrClaimNotFound) {
		return err
	}

	if err := s.store.Delete(ctx, models.CollectionAssignments, claimID); err != nil {
		return fmt.Errorf("failed to cancel claim: %w", err)
	}
	s.proj.RemoveOne(models.CollectionAssignments, claimID)

	if menuItemID == "" {
		return nil
	}

	_, err := s.store.Transaction(ctx, models.CollectionMenuItems, menuItemID, clearPointerIf(claimant))
	switch {
	case err == nil:
		s.proj.PatchOne(models.CollectionMenuItems, menuItemID, clearedPointer())
	case errors.Is(err, recordstore.ErrAborted), errors.Is(err, ErrItemNotFound):
		// pointer already released or handed to someone else
	default:
		s.log.Warn("claim cancelled but item pointer not cleared",
			"error", err, "assignment_id", claimID, "item_id", menuItemID)
	}

	s.log.Info("claim cancelled", "assignment_id", claimID, "item_id", menuItemID)
	return nil
}

// ReplaceClaimant hands an existing claim to another user. It overwrites
// the item pointer without the conditional check used by Claim: an admin
// is assigning ownership, not competing for it.
func (s *Service) ReplaceClaimant(ctx context.Context, claimID, newUserID, newUserName string) error {
	newUserName = i18n.NormalizeName(newUserName)
	if newUserID == "" || newUserName == "" {
		return ErrInvalidClaimant
	}

	a, err := s.getAssignment(ctx, claimID)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	ledger := recordstore.Document{
		"user_id":    newUserID,
		"user_name":  newUserName,
		"updated_at": now,
	}
	if err := s.store.Update(ctx, models.CollectionAssignments, claimID, ledger); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return ErrClaimNotFound
		}
		return fmt.Errorf("failed to replace claimant: %w", err)
	}
	s.proj.PatchOne(models.CollectionAssignments, claimID, ledger)

	pointer := recordstore.Document{
		models.FieldAssignedTo:     newUserID,
		models.FieldAssignedToName: newUserName,
		models.FieldAssignedAt:     now,
	}
	if err := s.store.Update(ctx, models.CollectionMenuItems, a.MenuItemID, pointer); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, a.MenuItemID)
		}
		return fmt.Errorf("failed to update item pointer: %w", err)
	}
	s.proj.PatchOne(models.CollectionMenuItems, a.MenuItemID, pointer)

	s.log.Info("claimant replaced",
		"assignment_id", claimID, "from", a.UserID, "to", newUserID)
	return nil
}
