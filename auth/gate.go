// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// DefaultAdminCheckTimeout bounds the wait on admins/{uid}
const DefaultAdminCheckTimeout = 5 * time.Second

// Gate decides whether a caller may perform privileged writes
type Gate struct {
	store   recordstore.Store
	timeout time.Duration
}

func NewGate(store recordstore.Store, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultAdminCheckTimeout
	}
	return &Gate{store: store, timeout: timeout}
}

// RequireAdmin returns nil only when uid has an active admin record.
// Any failure, including the lookup timing out, denies access.
func (g *Gate) RequireAdmin(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrPermissionDenied
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		snap recordstore.Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := g.store.Get(ctx, models.CollectionAdmins, uid)
		done <- result{snap, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		slog.Warn("admin check timed out", "uid", uid)
		return fmt.Errorf("%w: admin check timed out", ErrPermissionDenied)
	}

	if errors.Is(res.err, recordstore.ErrNotFound) {
		return ErrPermissionDenied
	}
	if res.err != nil {
		slog.Error("failed to check admin status", "error", res.err, "uid", uid)
		return fmt.Errorf("%w: %v", ErrPermissionDenied, res.err)
	}

	var admin models.Admin
	if err := res.snap.Decode(&admin); err != nil || !admin.IsActive {
		return ErrPermissionDenied
	}
	return nil
}

// IsAdmin is RequireAdmin as a boolean
func (g *Gate) IsAdmin(ctx context.Context, uid string) bool {
	return g.RequireAdmin(ctx, uid) == nil
}
