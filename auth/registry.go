// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/shared-friday/i18n"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// Registry tracks the identities the server knows about
type Registry struct {
	store recordstore.Store
	gate  *Gate
	now   func() time.Time
}

func NewRegistry(store recordstore.Store, gate *Gate) *Registry {
	return &Registry{store: store, gate: gate, now: time.Now}
}

// CreateUser registers a new identity. An empty display name creates an
// anonymous session.
func (r *Registry) CreateUser(ctx context.Context, displayName string) (models.User, error) {
	uid, err := GenerateID(16)
	if err != nil {
		return models.User{}, err
	}

	displayName = i18n.NormalizeName(displayName)
	user := models.User{
		ID:          uid,
		DisplayName: displayName,
		IsAnonymous: displayName == "",
		CreatedAt:   r.now().UTC(),
	}

	doc, err := recordstore.ToDocument(user)
	if err != nil {
		return models.User{}, err
	}
	if err := r.store.Set(ctx, models.CollectionUsers, uid, doc); err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "uid", uid, "anonymous", user.IsAnonymous)
	return user, nil
}

// User looks up a known identity
func (r *Registry) User(ctx context.Context, uid string) (models.User, error) {
	snap, err := r.store.Get(ctx, models.CollectionUsers, uid)
	if errors.Is(err, recordstore.ErrNotFound) {
		return models.User{}, ErrUnknownUser
	}
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := snap.Decode(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// KnownUserIDs returns the set of every registered identity
func (r *Registry) KnownUserIDs(ctx context.Context) (map[string]bool, error) {
	snaps, err := r.store.List(ctx, models.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	known := make(map[string]bool, len(snaps))
	for _, s := range snaps {
		known[s.ID] = true
	}
	return known, nil
}

// DeleteUser removes an identity. The caller must be an active admin.
// Claims held by the user are left in place for CleanupGhostAssignments.
func (r *Registry) DeleteUser(ctx context.Context, callerUID, uid string) error {
	if err := r.gate.RequireAdmin(ctx, callerUID); err != nil {
		return err
	}
	if uid == "" {
		return ErrUnknownUser
	}

	if _, err := r.store.Get(ctx, models.CollectionUsers, uid); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return ErrUnknownUser
		}
		return err
	}

	if err := r.store.Delete(ctx, models.CollectionUsers, uid); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	// An admin record without an identity would keep granting access.
	if err := r.store.Delete(ctx, models.CollectionAdmins, uid); err != nil {
		slog.Warn("failed to delete admin record", "error", err, "uid", uid)
	}

	slog.Info("user deleted", "uid", uid, "by", callerUID)
	return nil
}

// GrantAdmin marks uid as an active admin. Used by the CLI bootstrap.
func (r *Registry) GrantAdmin(ctx context.Context, uid, displayName string) error {
	if _, err := r.User(ctx, uid); err != nil {
		return err
	}

	doc, err := recordstore.ToDocument(models.Admin{
		UserID:      uid,
		DisplayName: displayName,
		IsActive:    true,
		CreatedAt:   r.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, models.CollectionAdmins, uid, doc); err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}

	slog.Info("admin granted", "uid", uid)
	return nil
}
