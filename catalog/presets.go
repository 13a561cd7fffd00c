// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// CreatePresetList stores a reusable list of items
func (s *Service) CreatePresetList(ctx context.Context, createdBy string, req models.CreatePresetListRequest) (models.PresetList, error) {
	name := i18n.NormalizeName(req.Name)
	if name == "" {
		return models.PresetList{}, fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if req.Type == "" {
		req.Type = models.PresetDefault
	}
	if !models.IsValidPresetType(req.Type) {
		return models.PresetList{}, fmt.Errorf("%w: unknown type %q", ErrInvalidPreset, req.Type)
	}
	if len(req.Items) == 0 {
		return models.PresetList{}, fmt.Errorf("%w: at least one item is required", ErrInvalidPreset)
	}
	for i, it := range req.Items {
		if it.Quantity == 0 {
			req.Items[i].Quantity = 1
		}
		if err := validateItem(it.Name, it.Category, req.Items[i].Quantity); err != nil {
			return models.PresetList{}, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	list := models.PresetList{
		Name:      name,
		Type:      req.Type,
		Items:     req.Items,
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}
	doc, err := recordstore.ToDocument(list)
	if err != nil {
		return models.PresetList{}, err
	}
	list.ID, err = s.store.Push(ctx, models.CollectionPresetLists, doc)
	if err != nil {
		return models.PresetList{}, fmt.Errorf("failed to create preset list: %w", err)
	}

	s.log.Info("preset list created", "preset_id", list.ID, "items", len(list.Items))
	return list, nil
}

// PresetLists returns every preset list sorted by name
func (s *Service) PresetLists(ctx context.Context) ([]models.PresetList, error) {
	snaps, err := s.store.List(ctx, models.CollectionPresetLists)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	lists := make([]models.PresetList, 0, len(snaps))
	for _, snap := range snaps {
		var l models.PresetList
		if err := snap.Decode(&l); err != nil {
			s.log.Warn("skipping unreadable preset list", "error", err, "preset_id", snap.ID)
			continue
		}
		lists = append(lists, l)
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].Name < lists[j].Name })
	return lists, nil
}

// ApplyPreset adds every item of a preset list to an event
func (s *Service) ApplyPreset(ctx context.Context, eventID, presetID string) ([]models.MenuItem, error) {
	snap, err := s.store.Get(ctx, models.CollectionPresetLists, presetID)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, ErrPresetNotFound
	}
	if err != nil {
		return nil, err
	}
	var list models.PresetList
	if err := snap.Decode(&list); err != nil {
		return nil, err
	}

	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}

	items := make([]models.MenuItem, 0, len(list.Items))
	for _, p := range list.Items {
		item, err := s.AddMenuItem(ctx, eventID, models.AddMenuItemRequest{
			Name:       p.Name,
			Category:   p.Category,
			Quantity:   p.Quantity,
			IsRequired: p.IsRequired,
			Notes:      p.Notes,
		}, Creator{})
		if err != nil {
			return items, fmt.Errorf("failed to apply %q: %w", p.Name, err)
		}
		items = append(items, item)
	}

	s.log.Info("preset applied", "preset_id", presetID, "event_id", eventID, "items", len(items))
	return items, nil
}
