// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/projection"
	"github.com/danielhkuo/shared-friday/recordstore"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidEvent    = errors.New("event name and date are required")
	ErrInvalidItem     = errors.New("invalid menu item")
	ErrPresetNotFound  = errors.New("preset list not found")
	ErrInvalidPreset   = errors.New("invalid preset list")
	ErrNothingToUpdate = errors.New("nothing to update")
)

// DefaultMaxParticipantQuantity caps how many of an item a participant may
// add for themselves.
const DefaultMaxParticipantQuantity = 10

// Service manages events, menu items and preset lists. Claim writes are
// delegated to the claims service.
type Service struct {
	store    recordstore.Store
	proj     *projection.Store
	claims   *claims.Service
	slugSalt string
	maxQty   int
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store recordstore.Store, proj *projection.Store, claimSvc *claims.Service, slugSalt string, maxParticipantQty int) *Service {
	if maxParticipantQty <= 0 {
		maxParticipantQty = DefaultMaxParticipantQuantity
	}
	return &Service{
		store:    store,
		proj:     proj,
		claims:   claimSvc,
		slugSalt: slugSalt,
		maxQty:   maxParticipantQty,
		log:      slog.Default(),
		now:      time.Now,
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Events

// CreateEvent stores a new event with its share slug. An active event
// deactivates every other event.
func (s *Service) CreateEvent(ctx context.Context, createdBy string, req models.CreateEventRequest) (models.Event, error) {
	name := i18n.NormalizeName(req.Name)
	if name == "" || strings.TrimSpace(req.Date) == "" {
		return models.Event{}, ErrInvalidEvent
	}

	doc := recordstore.Document{
		"name":       name,
		"date":       strings.TrimSpace(req.Date),
		"is_active":  req.IsActive,
		"created_by": createdBy,
		"created_at": s.timestamp(),
	}
	if req.Time != "" {
		doc["time"] = req.Time
	}
	if req.Location != "" {
		doc["location"] = req.Location
	}
	if req.Description != "" {
		doc["description"] = req.Description
	}

	id, err := s.store.Push(ctx, models.CollectionEvents, doc)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	slug := recordstore.Document{"share_slug": auth.GenerateShareSlug(id, s.slugSalt)}
	if err := s.store.Update(ctx, models.CollectionEvents, id, slug); err != nil {
		return models.Event{}, fmt.Errorf("failed to set share slug: %w", err)
	}
	s.proj.UpsertOne(models.CollectionEvents, id, doc.Merge(slug))

	if req.IsActive {
		if err := s.deactivateOthers(ctx, id); err != nil {
			s.log.Warn("failed to deactivate other events", "error", err, "event_id", id)
		}
	}

	s.log.Info("event created", "event_id", id, "name", name, "active", req.IsActive)
	return s.event(ctx, id)
}

// UpdateEvent applies a partial update. Activating the event deactivates
// the others.
func (s *Service) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (models.Event, error) {
	fields := recordstore.Document{}
	if req.Name != nil {
		name := i18n.NormalizeName(*req.Name)
		if name == "" {
			return models.Event{}, ErrInvalidEvent
		}
		fields["name"] = name
	}
	if req.Date != nil {
		if strings.TrimSpace(*req.Date) == "" {
			return models.Event{}, ErrInvalidEvent
		}
		fields["date"] = strings.TrimSpace(*req.Date)
	}
	setOptional(fields, "time", req.Time)
	setOptional(fields, "location", req.Location)
	setOptional(fields, "description", req.Description)
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return models.Event{}, ErrNothingToUpdate
	}

	err := s.store.Update(ctx, models.CollectionEvents, id, fields)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.proj.PatchOne(models.CollectionEvents, id, fields)

	if req.IsActive != nil && *req.IsActive {
		if err := s.deactivateOthers(ctx, id); err != nil {
			s.log.Warn("failed to deactivate other events", "error", err, "event_id", id)
		}
	}

	s.log.Info("event updated", "event_id", id)
	return s.event(ctx, id)
}

// deactivateOthers clears is_active on every event but keep. Concurrent
// organizers activating different events can still both end up active.
func (s *Service) deactivateOthers(ctx context.Context, keep string) error {
	snaps, err := s.store.List(ctx, models.CollectionEvents)
	if err != nil {
		return err
	}

	var errs []error
	off := recordstore.Document{"is_active": false}
	for _, snap := range snaps {
		if snap.ID == keep {
			continue
		}
		if active, _ := snap.Data["is_active"].(bool); !active {
			continue
		}
		if err := s.store.Update(ctx, models.CollectionEvents, snap.ID, off); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", snap.ID, err))
			continue
		}
		s.proj.PatchOne(models.CollectionEvents, snap.ID, off)
	}
	return errors.Join(errs...)
}

// DeleteEvent removes the event's ledger entries, then its items, then the
// event itself.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.event(ctx, id); err != nil {
		return err
	}

	if err := s.deleteWhere(ctx, models.CollectionAssignments, "event_id", id); err != nil {
		return fmt.Errorf("failed to delete event assignments: %w", err)
	}
	if err := s.deleteWhere(ctx, models.CollectionMenuItems, "event_id", id); err != nil {
		return fmt.Errorf("failed to delete event items: %w", err)
	}
	if err := s.store.Delete(ctx, models.CollectionEvents, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.proj.RemoveOne(models.CollectionEvents, id)

	s.log.Info("event deleted", "event_id", id)
	return nil
}

func (s *Service) event(ctx context.Context, id string) (models.Event, error) {
	snap, err := s.store.Get(ctx, models.CollectionEvents, id)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	var e models.Event
	if err := snap.Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// deleteWhere deletes every record in collection whose field equals value
func (s *Service) deleteWhere(ctx context.Context, collection, field, value string) error {
	snaps, err := s.store.List(ctx, collection)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if snap.Data.String(field) != value {
			continue
		}
		if err := s.store.Delete(ctx, collection, snap.ID); err != nil {
			return err
		}
	}
	return nil
}

// setOptional copies a pointer field into fields. An empty string removes it.
func setOptional(fields recordstore.Document, key string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		fields[key] = trimmed
	} else {
		fields[key] = nil
	}
}
