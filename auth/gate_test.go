// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/shared-friday/db"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

func newTestRecordStore(t *testing.T) *recordstore.SQLStore {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn))

	return recordstore.New(conn)
}

// slowStore blocks admin lookups until the context gives up
type slowStore struct {
	recordstore.Store
}

func (slowStore) Get(ctx context.Context, collection, id string) (recordstore.Snapshot, error) {
	<-ctx.Done()
	return recordstore.Snapshot{}, ctx.Err()
}

func TestRequireAdmin(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, models.CollectionAdmins, "boss", recordstore.Document{"is_active": true}))
	require.NoError(t, store.Set(ctx, models.CollectionAdmins, "retired", recordstore.Document{"is_active": false}))

	gate := NewGate(store, time.Second)

	tests := []struct {
		name    string
		uid     string
		allowed bool
	}{
		{"active admin", "boss", true},
		{"inactive admin", "retired", false},
		{"not an admin", "guest", false},
		{"no identity", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.RequireAdmin(ctx, tt.uid)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrPermissionDenied)
			}
			assert.Equal(t, tt.allowed, gate.IsAdmin(ctx, tt.uid))
		})
	}
}

func TestRequireAdmin_TimeoutFailsClosed(t *testing.T) {
	gate := NewGate(slowStore{}, 20*time.Millisecond)

	start := time.Now()
	err := gate.RequireAdmin(context.Background(), "boss")

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry_CreateUser(t *testing.T) {
	store := newTestRecordStore(t)
	reg := NewRegistry(store, NewGate(store, time.Second))
	ctx := context.Background()

	named, err := reg.CreateUser(ctx, "  Noa ")
	require.NoError(t, err)
	assert.Equal(t, "Noa", named.DisplayName)
	assert.False(t, named.IsAnonymous)

	anon, err := reg.CreateUser(ctx, "")
	require.NoError(t, err)
	assert.True(t, anon.IsAnonymous)

	got, err := reg.User(ctx, named.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noa", got.DisplayName)

	known, err := reg.KnownUserIDs(ctx)
	require.NoError(t, err)
	assert.True(t, known[named.ID])
	assert.True(t, known[anon.ID])
	assert.Len(t, known, 2)

	_, err = reg.User(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestRegistry_DeleteUserRequiresAdmin(t *testing.T) {
	store := newTestRecordStore(t)
	reg := NewRegistry(store, NewGate(store, time.Second))
	ctx := context.Background()

	admin, err := reg.CreateUser(ctx, "Admin")
	require.NoError(t, err)
	require.NoError(t, reg.GrantAdmin(ctx, admin.ID, "Admin"))

	victim, err := reg.CreateUser(ctx, "Victim")
	require.NoError(t, err)
	bystander, err := reg.CreateUser(ctx, "Bystander")
	require.NoError(t, err)

	err = reg.DeleteUser(ctx, bystander.ID, victim.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = reg.User(ctx, victim.ID)
	assert.NoError(t, err, "non-admin delete must not remove the user")

	require.NoError(t, reg.DeleteUser(ctx, admin.ID, victim.ID))
	_, err = reg.User(ctx, victim.ID)
	assert.ErrorIs(t, err, ErrUnknownUser)

	err = reg.DeleteUser(ctx, admin.ID, victim.ID)
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

func TestRegistry_DeletedAdminLosesAccess(t *testing.T) {
	store := newTestRecordStore(t)
	gate := NewGate(store, time.Second)
	reg := NewRegistry(store, gate)
	ctx := context.Background()

	a, err := reg.CreateUser(ctx, "A")
	require.NoError(t, err)
	b, err := reg.CreateUser(ctx, "B")
	require.NoError(t, err)
	require.NoError(t, reg.GrantAdmin(ctx, a.ID, "A"))
	require.NoError(t, reg.GrantAdmin(ctx, b.ID, "B"))

	require.NoError(t, reg.DeleteUser(ctx, a.ID, b.ID))
	assert.False(t, gate.IsAdmin(ctx, b.ID))
}

func TestRegistry_GrantAdminUnknownUser(t *testing.T) {
	store := newTestRecordStore(t)
	reg := NewRegistry(store, NewGate(store, time.Second))

	err := reg.GrantAdmin(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, ErrUnknownUser)
}
