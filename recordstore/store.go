// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recordstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAborted        = errors.New("transaction aborted")
	ErrTooManyRetries = errors.New("transaction retried too many times")
)

// TxFunc computes the next value of a record from its current value.
// current is nil when the record does not exist. Returning an error aborts
// the transaction with that error; returning a nil Document aborts with
// ErrAborted.
type TxFunc func(current Document) (Document, error)

// Listener receives the full contents of a collection after each commit.
type Listener func(snapshots []Snapshot)

// Store is a document key-value store with per-record atomicity only.
type Store interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	List(ctx context.Context, collection string) ([]Snapshot, error)

	// Push creates a record under a generated key and returns the key.
	Push(ctx context.Context, collection string, doc Document) (string, error)
	// Set writes the whole record, creating it when missing.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing record. Nil values remove fields.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Transaction runs a conditional read-modify-write on one record,
	// re-reading and re-running fn when a concurrent writer wins the race.
	Transaction(ctx context.Context, collection, id string, fn TxFunc) (Snapshot, error)

	// Subscribe delivers the current collection immediately and again after
	// every committed change. The returned func cancels the subscription.
	Subscribe(ctx context.Context, collection string, fn Listener) (func(), error)
}
