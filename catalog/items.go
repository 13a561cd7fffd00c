// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// Creator identifies whoever adds an item. Empty for organizer items.
type Creator struct {
	ID   string
	Name string
}

func validateItem(name, category string, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if !models.IsValidCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, category)
	}
	if quantity < models.MinQuantity || quantity > models.MaxQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", ErrInvalidItem, models.MinQuantity, models.MaxQuantity)
	}
	return nil
}

// AddMenuItem adds an organizer item to an event. The item starts
// unclaimed.
func (s *Service) AddMenuItem(ctx context.Context, eventID string, req models.AddMenuItemRequest, creator Creator) (models.MenuItem, error) {
	if err := validateItem(req.Name, req.Category, req.Quantity); err != nil {
		return models.MenuItem{}, err
	}
	if _, err := s.event(ctx, eventID); err != nil {
		return models.MenuItem{}, err
	}

	doc := recordstore.Document{
		"event_id":    eventID,
		"name":        i18n.NormalizeName(req.Name),
		"category":    req.Category,
		"quantity":    req.Quantity,
		"is_required": req.IsRequired,
		"created_at":  s.timestamp(),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		doc["notes"] = notes
	}
	if creator.ID != "" {
		doc["creator_id"] = creator.ID
		doc["creator_name"] = creator.Name
	}

	id, err := s.store.Push(ctx, models.CollectionMenuItems, doc)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to add menu item: %w", err)
	}
	s.proj.UpsertOne(models.CollectionMenuItems, id, doc)

	s.log.Info("menu item added", "item_id", id, "event_id", eventID, "name", req.Name)
	return s.item(ctx, id)
}

// AddParticipantItem is the self-service path: a participant adds something
// they will bring, capped at the participant quantity limit, and may claim
// it in the same call. If that claim fails the new item is removed again.
func (s *Service) AddParticipantItem(ctx context.Context, eventID string, req models.AddMenuItemRequest, creator Creator) (models.MenuItem, string, error) {
	if req.Quantity > s.maxQty {
		return models.MenuItem{}, "", fmt.Errorf("%w: participants may add at most %d", ErrInvalidItem, s.maxQty)
	}
	if creator.ID == "" || strings.TrimSpace(creator.Name) == "" {
		return models.MenuItem{}, "", claims.ErrInvalidClaimant
	}

	item, err := s.AddMenuItem(ctx, eventID, req, creator)
	if err != nil {
		return models.MenuItem{}, "", err
	}
	if !req.AssignToMe {
		return item, "", nil
	}

	claimID, err := s.claims.Claim(ctx, claims.ClaimRequest{
		MenuItemID: item.ID,
		UserID:     creator.ID,
		UserName:   creator.Name,
		Phone:      req.Phone,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), models.CollectionMenuItems, item.ID); delErr != nil {
			s.log.Error("failed to remove unclaimed participant item", "error", delErr, "item_id", item.ID)
		} else {
			s.proj.RemoveOne(models.CollectionMenuItems, item.ID)
		}
		return models.MenuItem{}, "", err
	}

	item, err = s.item(ctx, item.ID)
	return item, claimID, err
}

// UpdateMenuItem edits the descriptive fields of an item. The claim pointer
// is not writable here.
func (s *Service) UpdateMenuItem(ctx context.Context, id string, req models.UpdateMenuItemRequest) (models.MenuItem, error) {
	fields := recordstore.Document{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return models.MenuItem{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
		}
		fields["name"] = i18n.NormalizeName(*req.Name)
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			return models.MenuItem{}, fmt.Errorf("%w: unknown category %q", ErrInvalidItem, *req.Category)
		}
		fields["category"] = *req.Category
	}
	if req.Quantity != nil {
		if *req.Quantity < models.MinQuantity || *req.Quantity > models.MaxQuantity {
			return models.MenuItem{}, fmt.Errorf("%w: quantity must be between %d and %d", ErrInvalidItem, models.MinQuantity, models.MaxQuantity)
		}
		fields["quantity"] = *req.Quantity
	}
	if req.IsRequired != nil {
		fields["is_required"] = *req.IsRequired
	}
	setOptional(fields, "notes", req.Notes)
	if len(fields) == 0 {
		return models.MenuItem{}, ErrNothingToUpdate
	}

	err := s.store.Update(ctx, models.CollectionMenuItems, id, fields)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.MenuItem{}, claims.ErrItemNotFound
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to update menu item: %w", err)
	}
	s.proj.PatchOne(models.CollectionMenuItems, id, fields)

	s.log.Info("menu item updated", "item_id", id)
	return s.item(ctx, id)
}

// DeleteMenuItem removes every ledger entry for the item, then the item.
func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	if _, err := s.item(ctx, id); err != nil {
		return err
	}

	if err := s.deleteWhere(ctx, models.CollectionAssignments, "menu_item_id", id); err != nil {
		return fmt.Errorf("failed to delete item assignments: %w", err)
	}
	if err := s.store.Delete(ctx, models.CollectionMenuItems, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	s.proj.RemoveOne(models.CollectionMenuItems, id)

	s.log.Info("menu item deleted", "item_id", id)
	return nil
}

func (s *Service) item(ctx context.Context, id string) (models.MenuItem, error) {
	snap, err := s.store.Get(ctx, models.CollectionMenuItems, id)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.MenuItem{}, claims.ErrItemNotFound
	}
	if err != nil {
		return models.MenuItem{}, err
	}
	var item models.MenuItem
	if err := snap.Decode(&item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}
