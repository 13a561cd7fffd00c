// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttempts matches the retry budget of hosted real-time databases.
const DefaultMaxAttempts = 25

// SQLStore implements Store on top of the records table.
type SQLStore struct {
	db          *sql.DB
	maxAttempts int
	newID       func() string

	mu        sync.Mutex
	listeners map[string]map[int]Listener
	nextSub   int
	// publishing serializes re-reads per collection so a listener never
	// sees an older snapshot after a newer one.
	publishing map[string]*sync.Mutex
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
		newID:       uuid.NewString,
		listeners:   make(map[string]map[int]Listener),
		publishing:  make(map[string]*sync.Mutex),
	}
}

// Get reads a single record
func (s *SQLStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var raw []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT data, version FROM records WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw, &version)

	if err == sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}

	doc, err := decodeData(raw)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Collection: collection, ID: id, Data: doc, Version: version}, nil
}

// List reads every record in a collection ordered by key
func (s *SQLStore) List(ctx context.Context, collection string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, version FROM records WHERE collection = $1 ORDER BY id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var id string
		var raw []byte
		var version int64
		if err := rows.Scan(&id, &raw, &version); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		doc, err := decodeData(raw)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, Snapshot{Collection: collection, ID: id, Data: doc, Version: version})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	return snaps, nil
}

func (s *SQLStore) Push(ctx context.Context, collection string, doc Document) (string, error) {
	raw, err := encodeData(doc)
	if err != nil {
		return "", err
	}

	id := s.newID()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data, version, updated_at)
		VALUES ($1, $2, $3, 1, $4)
	`, collection, id, raw, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create %s record: %w", collection, err)
	}

	s.publish(ctx, collection)
	return id, nil
}

func (s *SQLStore) Set(ctx context.Context, collection, id string, doc Document) error {
	raw, err := encodeData(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data, version, updated_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			version = records.version + 1,
			updated_at = excluded.updated_at
	`, collection, id, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}

	s.publish(ctx, collection)
	return nil
}

// Update merges fields into an existing record. It rides on the same
// compare-and-swap loop as Transaction so concurrent merges never drop fields.
func (s *SQLStore) Update(ctx context.Context, collection, id string, fields Document) error {
	_, err := s.Transaction(ctx, collection, id, func(current Document) (Document, error) {
		if current == nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return current.Merge(fields), nil
	})
	return err
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	s.publish(ctx, collection)
	return nil
}

// Transaction reads the record, runs fn, and writes the result only if the
// version has not moved. On a lost race it starts over.
func (s *SQLStore) Transaction(ctx context.Context, collection, id string, fn TxFunc) (Snapshot, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}

		current, err := s.Get(ctx, collection, id)
		exists := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Snapshot{}, err
		}

		next, err := fn(current.Data.Clone())
		if err != nil {
			return Snapshot{}, err
		}
		if next == nil {
			return Snapshot{}, ErrAborted
		}

		raw, err := encodeData(next)
		if err != nil {
			return Snapshot{}, err
		}

		var res sql.Result
		if exists {
			res, err = s.db.ExecContext(ctx, `
				UPDATE records
				SET data = $1, version = version + 1, updated_at = $2
				WHERE collection = $3 AND id = $4 AND version = $5
			`, raw, time.Now().UTC(), collection, id, current.Version)
		} else {
			res, err = s.db.ExecContext(ctx, `
				INSERT INTO records (collection, id, data, version, updated_at)
				VALUES ($1, $2, $3, 1, $4)
				ON CONFLICT (collection, id) DO NOTHING
			`, collection, id, raw, time.Now().UTC())
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
		}
		if n == 0 {
			slog.Debug("transaction conflict, retrying",
				"collection", collection, "id", id, "attempt", attempt)
			continue
		}

		s.publish(ctx, collection)

		version := int64(1)
		if exists {
			version = current.Version + 1
		}
		return Snapshot{Collection: collection, ID: id, Data: next, Version: version}, nil
	}

	return Snapshot{}, fmt.Errorf("%s/%s: %w", collection, id, ErrTooManyRetries)
}

// Subscribe registers fn before reading the initial snapshot, and both
// happen under the collection's publish lock, so no commit can slip between
// the initial delivery and the first push.
func (s *SQLStore) Subscribe(ctx context.Context, collection string, fn Listener) (func(), error) {
	s.mu.Lock()
	if s.listeners[collection] == nil {
		s.listeners[collection] = make(map[int]Listener)
	}
	subID := s.nextSub
	s.nextSub++
	s.listeners[collection][subID] = fn
	lock := s.publishLockLocked(collection)
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.listeners[collection], subID)
		s.mu.Unlock()
	}

	lock.Lock()
	defer lock.Unlock()

	snaps, err := s.List(ctx, collection)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(snaps)

	return unsubscribe, nil
}

// publishLockLocked returns the per collection publish lock. s.mu must be held.
func (s *SQLStore) publishLockLocked(collection string) *sync.Mutex {
	lock := s.publishing[collection]
	if lock == nil {
		lock = &sync.Mutex{}
		s.publishing[collection] = lock
	}
	return lock
}

// publish pushes a fresh read of the collection to every listener.
// A failed re-read is logged; the next commit will deliver again.
func (s *SQLStore) publish(ctx context.Context, collection string) {
	s.mu.Lock()
	if len(s.listeners[collection]) == 0 {
		s.mu.Unlock()
		return
	}
	lock := s.publishLockLocked(collection)
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	snaps, err := s.List(context.WithoutCancel(ctx), collection)
	if err != nil {
		slog.Warn("failed to publish collection", "collection", collection, "error", err)
		return
	}

	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners[collection]))
	for _, l := range s.listeners[collection] {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snaps)
	}
}

func encodeData(doc Document) (string, error) {
	if doc == nil {
		doc = Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(raw), nil
}

func decodeData(raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
