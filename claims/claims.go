// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/projection"
	"github.com/danielhkuo/shared-friday/recordstore"
)

var (
	ErrItemNotFound          = errors.New("menu item not found")
	ErrAlreadyClaimedByOther = errors.New("item already claimed by someone else")
	ErrDuplicateClaim        = errors.New("item already claimed by you")
	ErrLedgerWriteFailed     = errors.New("failed to record claim")
	ErrInvalidQuantity       = errors.New("quantity must be between 1 and 100")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrInvalidClaimant       = errors.New("claimant id and name are required")
	ErrNothingToUpdate       = errors.New("nothing to update")
)

// Service owns every write that touches a claim: the ledger entry in
// assignments and the pointer cached on the menu item.
type Service struct {
	store recordstore.Store
	proj  *projection.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store recordstore.Store, proj *projection.Store) *Service {
	return &Service{
		store: store,
		proj:  proj,
		log:   slog.Default(),
		now:   time.Now,
	}
}

// ClaimRequest carries everything needed to claim one menu item
type ClaimRequest struct {
	MenuItemID string
	UserID     string
	UserName   string
	Phone      string
	Quantity   int
	Notes      string
}

// ClaimUpdate is a partial update of a ledger entry
type ClaimUpdate struct {
	Quantity *int
	Notes    *string
}

// ValidateQuantity enforces the [1,100] bound shared by claims and updates
func ValidateQuantity(q int) error {
	if q < models.MinQuantity || q > models.MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// Claim takes a menu item for a user and returns the new ledger entry id.
//
// Phase one sets the item's pointer inside a conditional transaction, which
// is the only step that has to win against other claimants. Phase two
// appends the ledger entry. If phase two fails the pointer is released
// again and ErrLedgerWriteFailed is returned.
func (s *Service) Claim(ctx context.Context, req ClaimRequest) (string, error) {
	if err := ValidateQuantity(req.Quantity); err != nil {
		return "", err
	}
	req.UserName = i18n.NormalizeName(req.UserName)
	if req.UserID == "" || req.UserName == "" {
		return "", ErrInvalidClaimant
	}

	now := s.now().UTC()
	pointer := recordstore.Document{
		models.FieldAssignedTo:     req.UserID,
		models.FieldAssignedToName: req.UserName,
		models.FieldAssignedAt:     now.Format(time.RFC3339Nano),
	}

	snap, err := s.store.Transaction(ctx, models.CollectionMenuItems, req.MenuItemID, func(cur recordstore.Document) (recordstore.Document, error) {
		if cur == nil {
			return nil, ErrItemNotFound
		}
		switch holder := cur.String(models.FieldAssignedTo); holder {
		case "":
			return cur.Merge(pointer), nil
		case req.UserID:
			return nil, ErrDuplicateClaim
		default:
			return nil, ErrAlreadyClaimedByOther
		}
	})
	if err != nil {
		return "", err
	}

	var item models.MenuItem
	if err := snap.Decode(&item); err != nil {
		s.releasePointer(ctx, req.MenuItemID, req.UserID)
		return "", fmt.Errorf("%w: %w", ErrLedgerWriteFailed, err)
	}

	entry := models.Assignment{
		EventID:    item.EventID,
		MenuItemID: req.MenuItemID,
		UserID:     req.UserID,
		UserName:   req.UserName,
		Phone:      strings.TrimSpace(req.Phone),
		Quantity:   req.Quantity,
		Notes:      strings.TrimSpace(req.Notes),
		Status:     models.StatusConfirmed,
		AssignedAt: now,
		UpdatedAt:  now,
	}
	doc, err := recordstore.ToDocument(entry)
	if err == nil {
		entry.ID, err = s.store.Push(ctx, models.CollectionAssignments, doc)
	}
	if err != nil {
		s.log.Error("failed to write assignment, releasing item",
			"error", err, "item_id", req.MenuItemID, "user_id", req.UserID)
		s.releasePointer(ctx, req.MenuItemID, req.UserID)
		return "", fmt.Errorf("%w: %w", ErrLedgerWriteFailed, err)
	}

	// Apply locally in commit order: pointer first, then the ledger entry.
	s.proj.PatchOne(models.CollectionMenuItems, req.MenuItemID, pointer)
	s.proj.UpsertOne(models.CollectionAssignments, entry.ID, doc)

	s.log.Info("item claimed",
		"item_id", req.MenuItemID, "assignment_id", entry.ID,
		"user_id", req.UserID, "quantity", req.Quantity)
	return entry.ID, nil
}

// releasePointer is the compensation for a failed ledger write. It only
// clears the pointer if it still names uid, and it runs even when the
// caller's context is already cancelled. The projection is patched only
// when the clear committed; a pointer that moved on is left as mirrored.
func (s *Service) releasePointer(ctx context.Context, itemID, uid string) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.store.Transaction(ctx, models.CollectionMenuItems, itemID, clearPointerIf(uid))
	switch {
	case err == nil:
		s.proj.PatchOne(models.CollectionMenuItems, itemID, clearedPointer())
	case errors.Is(err, recordstore.ErrAborted), errors.Is(err, ErrItemNotFound):
		s.log.Warn("claim pointer already moved on", "item_id", itemID, "user_id", uid)
	default:
		s.log.Error("failed to roll back claim pointer",
			"error", err, "item_id", itemID, "user_id", uid)
	}
}

// clearPointerIf returns a transaction that clears the claim pointer when
// it names uid. An empty uid clears any pointer. Anything else aborts.
func clearPointerIf(uid string) recordstore.TxFunc {
	return func(cur recordstore.Document) (recordstore.Document, error) {
		if cur == nil {
			return nil, ErrItemNotFound
		}
		holder := cur.String(models.FieldAssignedTo)
		if holder == "" || (uid != "" && holder != uid) {
			return nil, nil
		}
		return cur.Merge(clearedPointer()), nil
	}
}

func clearedPointer() recordstore.Document {
	return recordstore.Document{
		models.FieldAssignedTo:     nil,
		models.FieldAssignedToName: nil,
		models.FieldAssignedAt:     nil,
	}
}

// getAssignment reads a ledger entry straight from the store
func (s *Service) getAssignment(ctx context.Context, claimID string) (models.Assignment, error) {
	snap, err := s.store.Get(ctx, models.CollectionAssignments, claimID)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.Assignment{}, ErrClaimNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}

	var a models.Assignment
	if err := snap.Decode(&a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Get returns a ledger entry by id
func (s *Service) Get(ctx context.Context, claimID string) (models.Assignment, error) {
	return s.getAssignment(ctx, claimID)
}
