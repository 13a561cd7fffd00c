// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// ReconcileGrace keeps ReconcilePointers away from claims that may still
// be between phase one and phase two.
const ReconcileGrace = time.Minute

// UserDirectory answers which user ids still exist
type UserDirectory interface {
	KnownUserIDs(ctx context.Context) (map[string]bool, error)
}

type RefreshReport struct {
	Events      int
	Items       int
	Assignments int
}

type CleanupReport struct {
	RemovedIDs []string
}

type ReconcileReport struct {
	ClearedPointers []string
	RemovedOrphans  []string
}

// ForceRefresh re-reads every mirrored collection from the store and
// rebuilds the projection from them.
func (s *Service) ForceRefresh(ctx context.Context) (RefreshReport, error) {
	var events, items, assignments []recordstore.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.store.List(gctx, models.CollectionEvents)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.store.List(gctx, models.CollectionMenuItems)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.store.List(gctx, models.CollectionAssignments)
		return err
	})
	if err := g.Wait(); err != nil {
		return RefreshReport{}, fmt.Errorf("failed to refresh: %w", err)
	}

	s.proj.ReplaceAll(models.CollectionEvents, events)
	s.proj.ReplaceAll(models.CollectionMenuItems, items)
	s.proj.ReplaceAll(models.CollectionAssignments, assignments)

	s.log.Info("projection refreshed", "events", len(events), "items", len(items), "assignments", len(assignments))
	return RefreshReport{Events: len(events), Items: len(items), Assignments: len(assignments)}, nil
}

// CleanupGhostAssignments removes ledger entries whose claimant is no
// longer a known user. Item pointers naming that claimant are released too.
// Failures on individual entries do not stop the scan; they are joined into
// the returned error.
func (s *Service) CleanupGhostAssignments(ctx context.Context, dir UserDirectory) (CleanupReport, error) {
	known, err := dir.KnownUserIDs(ctx)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("failed to load users: %w", err)
	}

	snaps, err := s.store.List(ctx, models.CollectionAssignments)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("failed to list assignments: %w", err)
	}

	var report CleanupReport
	var errs []error
	for _, snap := range snaps {
		uid := snap.Data.String("user_id")
		if known[uid] {
			continue
		}

		if err := s.store.Delete(ctx, models.CollectionAssignments, snap.ID); err != nil {
			errs = append(errs, fmt.Errorf("assignment %s: %w", snap.ID, err))
			continue
		}
		s.proj.RemoveOne(models.CollectionAssignments, snap.ID)
		report.RemovedIDs = append(report.RemovedIDs, snap.ID)

		if uid == "" {
			continue
		}
		itemID := snap.Data.String("menu_item_id")
		_, err := s.store.Transaction(ctx, models.CollectionMenuItems, itemID, clearPointerIf(uid))
		switch {
		case err == nil:
			s.proj.PatchOne(models.CollectionMenuItems, itemID, clearedPointer())
		case errors.Is(err, recordstore.ErrAborted), errors.Is(err, ErrItemNotFound):
		default:
			errs = append(errs, fmt.Errorf("item %s: %w", itemID, err))
		}
	}

	s.log.Info("ghost assignments cleaned up", "removed", len(report.RemovedIDs), "failed", len(errs))
	return report, errors.Join(errs...)
}

// ReconcilePointers repairs drift between item pointers and the ledger.
//
// A pointer with no ledger entry for the same item and holder is cleared.
// A ledger entry whose item is gone, or whose item points at someone else,
// is removed. Anything touched within ReconcileGrace is left alone.
func (s *Service) ReconcilePointers(ctx context.Context) (ReconcileReport, error) {
	var items, assignments []recordstore.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.List(gctx, models.CollectionMenuItems)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.store.List(gctx, models.CollectionAssignments)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReconcileReport{}, fmt.Errorf("failed to load claims: %w", err)
	}

	cutoff := s.now().Add(-ReconcileGrace)
	holders := make(map[string]string, len(items))
	for _, snap := range items {
		holders[snap.ID] = snap.Data.String(models.FieldAssignedTo)
	}

	type claimKey struct{ item, user string }
	ledger := make(map[claimKey]bool, len(assignments))
	for _, snap := range assignments {
		ledger[claimKey{snap.Data.String("menu_item_id"), snap.Data.String("user_id")}] = true
	}

	var report ReconcileReport
	var errs []error

	for _, snap := range items {
		holder := holders[snap.ID]
		if holder == "" || ledger[claimKey{snap.ID, holder}] {
			continue
		}
		if recent(snap.Data, models.FieldAssignedAt, cutoff) {
			continue
		}
		_, err := s.store.Transaction(ctx, models.CollectionMenuItems, snap.ID, clearPointerIf(holder))
		switch {
		case err == nil:
			s.proj.PatchOne(models.CollectionMenuItems, snap.ID, clearedPointer())
			report.ClearedPointers = append(report.ClearedPointers, snap.ID)
		case errors.Is(err, recordstore.ErrAborted), errors.Is(err, ErrItemNotFound):
		default:
			errs = append(errs, fmt.Errorf("item %s: %w", snap.ID, err))
		}
	}

	for _, snap := range assignments {
		itemID := snap.Data.String("menu_item_id")
		holder, exists := holders[itemID]
		if exists && holder == snap.Data.String("user_id") {
			continue
		}
		if recent(snap.Data, "updated_at", cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, models.CollectionAssignments, snap.ID); err != nil {
			errs = append(errs, fmt.Errorf("assignment %s: %w", snap.ID, err))
			continue
		}
		s.proj.RemoveOne(models.CollectionAssignments, snap.ID)
		report.RemovedOrphans = append(report.RemovedOrphans, snap.ID)
	}

	sort.Strings(report.ClearedPointers)
	sort.Strings(report.RemovedOrphans)

	s.log.Info("claims reconciled",
		"cleared_pointers", len(report.ClearedPointers),
		"removed_orphans", len(report.RemovedOrphans),
		"failed", len(errs))
	return report, errors.Join(errs...)
}

// recent reports whether the timestamp at key is after cutoff. Missing or
// unparsable timestamps count as old.
func recent(doc recordstore.Document, key string, cutoff time.Time) bool {
	ts, err := time.Parse(time.RFC3339Nano, doc.String(key))
	if err != nil {
		return false
	}
	return ts.After(cutoff)
}
