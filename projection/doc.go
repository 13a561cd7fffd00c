// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package projection keeps an in-memory mirror of events, menu items and
assignments. Every read served by the API comes from here, never from the
record store directly.

# Keeping In Sync

Bind subscribes to the three collections; every push replaces the whole
collection:

	proj := projection.New()
	unbind, err := proj.Bind(ctx, store)
	defer unbind()

# Mutations

	ReplaceAll(collection, snapshots)   full replace from a push
	PatchOne(collection, id, fields)    optimistic merge, no-op if absent
	UpsertOne(collection, id, doc)      optimistic insert
	RemoveOne(collection, id)           delete with cascade
	Rollback(collection, id)            undo the last optimistic write

Callers performing multi-step writes apply them here in the same order the
backend committed them.

# Optimistic State

Each entity moves through

	pending-local → confirmed      (next push arrives)
	pending-local → rolled-back    (Rollback)

State reports the current stage.
*/
package projection
