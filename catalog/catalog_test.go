// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/db"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/projection"
	"github.com/danielhkuo/shared-friday/recordstore"
)

type testEnv struct {
	svc    *Service
	claims *claims.Service
	store  *recordstore.SQLStore
	proj   *projection.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn))

	store := recordstore.New(conn)
	proj := projection.New()
	unbind, err := proj.Bind(context.Background(), store)
	require.NoError(t, err)
	t.Cleanup(unbind)

	claimSvc := claims.NewService(store, proj)
	return &testEnv{
		svc:    NewService(store, proj, claimSvc, "slug-salt", 5),
		claims: claimSvc,
		store:  store,
		proj:   proj,
	}
}

func (e *testEnv) createEvent(t *testing.T, name string, active bool) models.Event {
	t.Helper()
	ev, err := e.svc.CreateEvent(context.Background(), "admin", models.CreateEventRequest{
		Name:     name,
		Date:     "2025-06-06",
		IsActive: active,
	})
	require.NoError(t, err)
	return ev
}

func (e *testEnv) addItem(t *testing.T, eventID, name string) models.MenuItem {
	t.Helper()
	item, err := e.svc.AddMenuItem(context.Background(), eventID, models.AddMenuItemRequest{
		Name:     name,
		Category: models.CategoryMain,
		Quantity: 1,
	}, Creator{})
	require.NoError(t, err)
	return item
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)

	ev := env.createEvent(t, "Friday Lunch", true)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Friday Lunch", ev.Name)
	assert.True(t, ev.IsActive)
	assert.NotEmpty(t, ev.ShareSlug)
	assert.Equal(t, "admin", ev.CreatedBy)

	projected, ok := env.proj.EventBySlug(ev.ShareSlug)
	require.True(t, ok)
	assert.Equal(t, ev.ID, projected.ID)

	_, err := env.svc.CreateEvent(context.Background(), "admin", models.CreateEventRequest{Name: "No date"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestCreateEvent_SingleActive(t *testing.T) {
	env := newTestEnv(t)

	first := env.createEvent(t, "First", true)
	second := env.createEvent(t, "Second", true)
	inactive := env.createEvent(t, "Draft", false)

	active, ok := env.proj.ActiveEvent()
	require.True(t, ok)
	assert.Equal(t, second.ID, active.ID)

	ev, ok := env.proj.Event(first.ID)
	require.True(t, ok)
	assert.False(t, ev.IsActive)

	on := true
	_, err := env.svc.UpdateEvent(context.Background(), inactive.ID, models.UpdateEventRequest{IsActive: &on})
	require.NoError(t, err)

	active, ok = env.proj.ActiveEvent()
	require.True(t, ok)
	assert.Equal(t, inactive.ID, active.ID)
	ev, _ = env.proj.Event(second.ID)
	assert.False(t, ev.IsActive)
}

func TestUpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.createEvent(t, "Lunch", false)

	name, loc := "Brunch", "Office roof"
	updated, err := env.svc.UpdateEvent(ctx, ev.ID, models.UpdateEventRequest{Name: &name, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Brunch", updated.Name)
	assert.Equal(t, "Office roof", updated.Location)

	empty := ""
	updated, err = env.svc.UpdateEvent(ctx, ev.ID, models.UpdateEventRequest{Location: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Location)

	_, err = env.svc.UpdateEvent(ctx, ev.ID, models.UpdateEventRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	_, err = env.svc.UpdateEvent(ctx, "missing", models.UpdateEventRequest{Name: &name})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteEvent_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ev := env.createEvent(t, "Doomed", true)
	other := env.createEvent(t, "Survivor", false)
	item := env.addItem(t, ev.ID, "Soup")
	keep := env.addItem(t, other.ID, "Bread")

	_, err := env.claims.Claim(ctx, claims.ClaimRequest{MenuItemID: item.ID, UserID: "u1", UserName: "Alice", Quantity: 1})
	require.NoError(t, err)
	keptClaim, err := env.claims.Claim(ctx, claims.ClaimRequest{MenuItemID: keep.ID, UserID: "u1", UserName: "Alice", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteEvent(ctx, ev.ID))

	_, err = env.store.Get(ctx, models.CollectionEvents, ev.ID)
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
	_, err = env.store.Get(ctx, models.CollectionMenuItems, item.ID)
	assert.ErrorIs(t, err, recordstore.ErrNotFound)

	assignments, err := env.store.List(ctx, models.CollectionAssignments)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, keptClaim, assignments[0].ID)

	assert.Empty(t, env.proj.ItemsForEvent(ev.ID))
	assert.Len(t, env.proj.ItemsForEvent(other.ID), 1)

	assert.ErrorIs(t, env.svc.DeleteEvent(ctx, ev.ID), ErrEventNotFound)
}

func TestAddMenuItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	ev := env.createEvent(t, "Lunch", true)

	tests := []struct {
		name    string
		eventID string
		req     models.AddMenuItemRequest
		wantErr error
	}{
		{"missing name", ev.ID, models.AddMenuItemRequest{Category: models.CategoryMain, Quantity: 1}, ErrInvalidItem},
		{"bad category", ev.ID, models.AddMenuItemRequest{Name: "X", Category: "snack", Quantity: 1}, ErrInvalidItem},
		{"zero quantity", ev.ID, models.AddMenuItemRequest{Name: "X", Category: models.CategoryMain}, ErrInvalidItem},
		{"quantity too large", ev.ID, models.AddMenuItemRequest{Name: "X", Category: models.CategoryMain, Quantity: 101}, ErrInvalidItem},
		{"missing event", "nope", models.AddMenuItemRequest{Name: "X", Category: models.CategoryMain, Quantity: 1}, ErrEventNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AddMenuItem(context.Background(), tt.eventID, tt.req, Creator{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, env.proj.Count(models.CollectionMenuItems))
}

func TestAddParticipantItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.createEvent(t, "Lunch", true)
	me := Creator{ID: "u1", Name: "Alice"}

	item, claimID, err := env.svc.AddParticipantItem(ctx, ev.ID, models.AddMenuItemRequest{
		Name:       "Couscous",
		Category:   models.CategoryMain,
		Quantity:   3,
		AssignToMe: true,
		Phone:      "050-0000000",
	}, me)
	require.NoError(t, err)
	require.NotEmpty(t, claimID)
	assert.Equal(t, "u1", item.ClaimedBy())
	assert.Equal(t, "u1", item.CreatorID)

	a, err := env.claims.Get(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Quantity)
	assert.Equal(t, "050-0000000", a.Phone)

	plain, claimID, err := env.svc.AddParticipantItem(ctx, ev.ID, models.AddMenuItemRequest{
		Name:     "Napkins",
		Category: models.CategoryOther,
		Quantity: 1,
	}, me)
	require.NoError(t, err)
	assert.Empty(t, claimID)
	assert.Empty(t, plain.ClaimedBy())

	_, _, err = env.svc.AddParticipantItem(ctx, ev.ID, models.AddMenuItemRequest{
		Name:     "Too many",
		Category: models.CategoryDrink,
		Quantity: 6,
	}, me)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, _, err = env.svc.AddParticipantItem(ctx, ev.ID, models.AddMenuItemRequest{
		Name:     "Anon",
		Category: models.CategoryDrink,
		Quantity: 1,
	}, Creator{})
	assert.ErrorIs(t, err, claims.ErrInvalidClaimant)

	assert.Len(t, env.proj.ItemsForEvent(ev.ID), 2)
}

func TestUpdateMenuItem_KeepsPointer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.createEvent(t, "Lunch", true)
	item := env.addItem(t, ev.ID, "Rice")

	_, err := env.claims.Claim(ctx, claims.ClaimRequest{MenuItemID: item.ID, UserID: "u1", UserName: "Alice", Quantity: 1})
	require.NoError(t, err)

	name, qty, cat := "Saffron rice", 2, models.CategoryStarter
	updated, err := env.svc.UpdateMenuItem(ctx, item.ID, models.UpdateMenuItemRequest{Name: &name, Quantity: &qty, Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, "Saffron rice", updated.Name)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, models.CategoryStarter, updated.Category)
	assert.Equal(t, "u1", updated.ClaimedBy())

	bad := 0
	_, err = env.svc.UpdateMenuItem(ctx, item.ID, models.UpdateMenuItemRequest{Quantity: &bad})
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = env.svc.UpdateMenuItem(ctx, "missing", models.UpdateMenuItemRequest{Name: &name})
	assert.ErrorIs(t, err, claims.ErrItemNotFound)
}

func TestDeleteMenuItem_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.createEvent(t, "Lunch", true)
	item := env.addItem(t, ev.ID, "Cake")

	claimID, err := env.claims.Claim(ctx, claims.ClaimRequest{MenuItemID: item.ID, UserID: "u1", UserName: "Alice", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteMenuItem(ctx, item.ID))

	_, err = env.claims.Get(ctx, claimID)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
	_, ok := env.proj.Item(item.ID)
	assert.False(t, ok)
	assert.Empty(t, env.proj.AssignmentsForUser("u1"))

	assert.ErrorIs(t, env.svc.DeleteMenuItem(ctx, item.ID), claims.ErrItemNotFound)
}

func TestPresets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ev := env.createEvent(t, "Lunch", true)

	list, err := env.svc.CreatePresetList(ctx, "admin", models.CreatePresetListRequest{
		Name: "Basics",
		Items: []models.PresetItem{
			{Name: "Bread", Category: models.CategoryStarter},
			{Name: "Water", Category: models.CategoryDrink, Quantity: 6, IsRequired: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PresetDefault, list.Type)
	assert.Equal(t, 1, list.Items[0].Quantity)

	_, err = env.svc.CreatePresetList(ctx, "admin", models.CreatePresetListRequest{Name: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidPreset)
	_, err = env.svc.CreatePresetList(ctx, "admin", models.CreatePresetListRequest{
		Name:  "Bad",
		Type:  "weird",
		Items: []models.PresetItem{{Name: "X", Category: models.CategoryMain}},
	})
	assert.ErrorIs(t, err, ErrInvalidPreset)

	lists, err := env.svc.PresetLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, list.ID, lists[0].ID)
	assert.Len(t, lists[0].Items, 2)

	items, err := env.svc.ApplyPreset(ctx, ev.ID, list.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, env.proj.ItemsForEvent(ev.ID), 2)

	_, err = env.svc.ApplyPreset(ctx, ev.ID, "missing")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	_, err = env.svc.ApplyPreset(ctx, "missing", list.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
