// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package projection

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// State tracks an entity through an optimistic local write
type State int

const (
	StateConfirmed State = iota
	StatePendingLocal
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePendingLocal:
		return "pending-local"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "confirmed"
	}
}

type entityKey struct {
	collection string
	id         string
}

// pending remembers what an entity looked like before a local patch.
// prior is nil when the patch inserted the entity.
type pending struct {
	state State
	prior recordstore.Document
}

// Store is the in-memory mirror of events, menu items and assignments.
// Entities are held as documents and decoded on read.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]recordstore.Document
	states      map[entityKey]*pending
}

func New() *Store {
	return &Store{
		collections: map[string]map[string]recordstore.Document{
			models.CollectionEvents:      {},
			models.CollectionMenuItems:   {},
			models.CollectionAssignments: {},
		},
		states: make(map[entityKey]*pending),
	}
}

// Bind subscribes the projection to the three mirrored collections.
func (p *Store) Bind(ctx context.Context, store recordstore.Store) (func(), error) {
	var cancels []func()
	unbind := func() {
		for _, c := range cancels {
			c()
		}
	}

	for _, collection := range []string{models.CollectionEvents, models.CollectionMenuItems, models.CollectionAssignments} {
		cancel, err := store.Subscribe(ctx, collection, func(snaps []recordstore.Snapshot) {
			p.ReplaceAll(collection, snaps)
		})
		if err != nil {
			unbind()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
		}
		cancels = append(cancels, cancel)
	}

	return unbind, nil
}

// ReplaceAll swaps in the full contents of a collection. Pushed data is
// ground truth, so every entity of the collection becomes confirmed.
func (p *Store) ReplaceAll(collection string, snaps []recordstore.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.collections[collection]; !ok {
		return
	}

	next := make(map[string]recordstore.Document, len(snaps))
	for _, s := range snaps {
		next[s.ID] = s.Data.Clone()
	}
	p.collections[collection] = next

	for key := range p.states {
		if key.collection == collection {
			delete(p.states, key)
		}
	}
}

// PatchOne merges fields into an existing entity and marks it pending-local.
// It is a no-op when the entity is absent.
func (p *Store) PatchOne(collection, id string, fields recordstore.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entities, ok := p.collections[collection]
	if !ok {
		return
	}
	current, ok := entities[id]
	if !ok {
		return
	}

	merged := current.Merge(fields)
	if reflect.DeepEqual(normalize(merged), normalize(current)) {
		return
	}
	p.markPending(collection, id, current)
	entities[id] = merged
}

// UpsertOne inserts or replaces an entity and marks it pending-local.
// Used for optimistic creates, which PatchOne deliberately ignores.
func (p *Store) UpsertOne(collection, id string, doc recordstore.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entities, ok := p.collections[collection]
	if !ok {
		return
	}

	current, exists := entities[id]
	if exists && reflect.DeepEqual(normalize(doc), normalize(current)) {
		return
	}
	p.markPending(collection, id, current)
	entities[id] = doc.Clone()
}

// RemoveOne deletes an entity and everything that hangs off it: an event
// takes its items and assignments, an item takes its assignments.
func (p *Store) RemoveOne(collection, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch collection {
	case models.CollectionEvents:
		for itemID, doc := range p.collections[models.CollectionMenuItems] {
			if doc.String("event_id") == id {
				p.removeLocked(models.CollectionMenuItems, itemID)
			}
		}
		for aID, doc := range p.collections[models.CollectionAssignments] {
			if doc.String("event_id") == id {
				p.removeLocked(models.CollectionAssignments, aID)
			}
		}
	case models.CollectionMenuItems:
		for aID, doc := range p.collections[models.CollectionAssignments] {
			if doc.String("menu_item_id") == id {
				p.removeLocked(models.CollectionAssignments, aID)
			}
		}
	}

	p.removeLocked(collection, id)
}

// Rollback restores an entity to its state before the last local patch.
func (p *Store) Rollback(collection, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := entityKey{collection, id}
	pend, ok := p.states[key]
	if !ok || pend.state != StatePendingLocal {
		return
	}

	if pend.prior == nil {
		delete(p.collections[collection], id)
	} else {
		p.collections[collection][id] = pend.prior
	}
	p.states[key] = &pending{state: StateRolledBack}
}

// State reports where an entity stands relative to the backend
func (p *Store) State(collection, id string) State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if pend, ok := p.states[entityKey{collection, id}]; ok {
		return pend.state
	}
	return StateConfirmed
}

func (p *Store) markPending(collection, id string, prior recordstore.Document) {
	key := entityKey{collection, id}
	// Keep the oldest prior so stacked patches roll back to confirmed data.
	if existing, ok := p.states[key]; ok && existing.state == StatePendingLocal {
		return
	}
	p.states[key] = &pending{state: StatePendingLocal, prior: prior.Clone()}
}

func (p *Store) removeLocked(collection, id string) {
	if entities, ok := p.collections[collection]; ok {
		delete(entities, id)
	}
	delete(p.states, entityKey{collection, id})
}

// normalize converts a document to its JSON form so values written locally
// (ints, time.Time) compare equal to the same values read back (float64, string).
func normalize(doc recordstore.Document) recordstore.Document {
	var out recordstore.Document
	if err := recordstore.Convert(doc, &out); err != nil {
		return doc
	}
	return out
}

// Reads

func (p *Store) Event(id string) (models.Event, bool) {
	var e models.Event
	ok := p.decodeOne(models.CollectionEvents, id, &e)
	return e, ok
}

func (p *Store) Item(id string) (models.MenuItem, bool) {
	var m models.MenuItem
	ok := p.decodeOne(models.CollectionMenuItems, id, &m)
	return m, ok
}

func (p *Store) Assignment(id string) (models.Assignment, bool) {
	var a models.Assignment
	ok := p.decodeOne(models.CollectionAssignments, id, &a)
	return a, ok
}

// Events returns every event, newest date first
func (p *Store) Events() []models.Event {
	events := decodeAll[models.Event](p, models.CollectionEvents, nil)
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date > events[j].Date
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}

// ActiveEvent returns the active event, if any
func (p *Store) ActiveEvent() (models.Event, bool) {
	for _, e := range p.Events() {
		if e.IsActive {
			return e, true
		}
	}
	return models.Event{}, false
}

// EventBySlug finds an event by its share slug
func (p *Store) EventBySlug(slug string) (models.Event, bool) {
	for _, e := range p.Events() {
		if e.ShareSlug == slug {
			return e, true
		}
	}
	return models.Event{}, false
}

// ItemsForEvent returns an event's menu items ordered by category then name
func (p *Store) ItemsForEvent(eventID string) []models.MenuItem {
	items := decodeAll[models.MenuItem](p, models.CollectionMenuItems, func(d recordstore.Document) bool {
		return d.String("event_id") == eventID
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return categoryRank(items[i].Category) < categoryRank(items[j].Category)
		}
		return items[i].Name < items[j].Name
	})
	return items
}

func (p *Store) AssignmentsForEvent(eventID string) []models.Assignment {
	return sortAssignments(decodeAll[models.Assignment](p, models.CollectionAssignments, func(d recordstore.Document) bool {
		return d.String("event_id") == eventID
	}))
}

func (p *Store) AssignmentsForItem(itemID string) []models.Assignment {
	return sortAssignments(decodeAll[models.Assignment](p, models.CollectionAssignments, func(d recordstore.Document) bool {
		return d.String("menu_item_id") == itemID
	}))
}

func (p *Store) AssignmentsForUser(userID string) []models.Assignment {
	return sortAssignments(decodeAll[models.Assignment](p, models.CollectionAssignments, func(d recordstore.Document) bool {
		return d.String("user_id") == userID
	}))
}

// Count returns the number of entities held for a collection
func (p *Store) Count(collection string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.collections[collection])
}

func (p *Store) decodeOne(collection, id string, v any) bool {
	p.mu.RLock()
	doc, ok := p.collections[collection][id]
	p.mu.RUnlock()
	if !ok {
		return false
	}

	snap := recordstore.Snapshot{Collection: collection, ID: id, Data: doc}
	if err := snap.Decode(v); err != nil {
		slog.Warn("failed to decode projected entity", "collection", collection, "id", id, "error", err)
		return false
	}
	return true
}

func decodeAll[T any](p *Store, collection string, keep func(recordstore.Document) bool) []T {
	p.mu.RLock()
	snaps := make([]recordstore.Snapshot, 0, len(p.collections[collection]))
	for id, doc := range p.collections[collection] {
		if keep == nil || keep(doc) {
			snaps = append(snaps, recordstore.Snapshot{Collection: collection, ID: id, Data: doc})
		}
	}
	p.mu.RUnlock()

	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		var v T
		if err := s.Decode(&v); err != nil {
			slog.Warn("failed to decode projected entity", "collection", collection, "id", s.ID, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func sortAssignments(as []models.Assignment) []models.Assignment {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].AssignedAt.Equal(as[j].AssignedAt) {
			return as[i].AssignedAt.Before(as[j].AssignedAt)
		}
		return as[i].ID < as[j].ID
	})
	return as
}

func categoryRank(c string) int {
	switch c {
	case models.CategoryStarter:
		return 0
	case models.CategoryMain:
		return 1
	case models.CategoryDessert:
		return 2
	case models.CategoryDrink:
		return 3
	default:
		return 4
	}
}
