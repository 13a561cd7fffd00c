// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/testutil"
)

// TestConcurrentClaims verifies that when several participants claim the
// same item at once exactly one wins and the ledger holds exactly one entry
func TestConcurrentClaims(t *testing.T) {
	a := testutil.SetupTestApp(t)
	handler := NewClaimHandler(a)

	ev := testutil.CreateTestEvent(t, a, "Friday dinner", true)
	item := testutil.AddTestItem(t, a, ev.ID, "Schnitzel")

	numClaimants := 8
	tokens := make([]string, numClaimants)
	uids := make(map[string]bool, numClaimants)
	for i := 0; i < numClaimants; i++ {
		uid, token := testutil.CreateTestUser(t, a, fmt.Sprintf("Claimant %d", i))
		tokens[i] = token
		uids[uid] = true
	}

	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numClaimants; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			w := claimRequest(handler, item.ID, tokens[idx], nil)
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 successful claim, got %d", created.Load())
	}
	if int(conflicts.Load()) != numClaimants-1 {
		t.Errorf("Expected %d conflicts, got %d", numClaimants-1, conflicts.Load())
	}

	// Verify the store holds exactly one ledger entry and it matches the pointer
	snaps, err := a.Store.List(context.Background(), models.CollectionAssignments)
	if err != nil {
		t.Fatalf("Failed to list assignments: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("Expected 1 assignment in the store, got %d", len(snaps))
	}

	winner := snaps[0].Data.String("user_id")
	if !uids[winner] {
		t.Errorf("Winner %s is not one of the claimants", winner)
	}

	snap, err := a.Store.Get(context.Background(), models.CollectionMenuItems, item.ID)
	if err != nil {
		t.Fatalf("Failed to read item: %v", err)
	}
	if holder := snap.Data.String(models.FieldAssignedTo); holder != winner {
		t.Errorf("Pointer names %s, ledger names %s", holder, winner)
	}
}

// TestConcurrentClaimsOnDifferentItems verifies that claims on separate
// items do not interfere with each other
func TestConcurrentClaimsOnDifferentItems(t *testing.T) {
	a := testutil.SetupTestApp(t)
	handler := NewClaimHandler(a)

	ev := testutil.CreateTestEvent(t, a, "Friday dinner", true)
	_, token := testutil.CreateTestUser(t, a, "Busy host")

	numItems := 6
	itemIDs := make([]string, numItems)
	for i := 0; i < numItems; i++ {
		itemIDs[i] = testutil.AddTestItem(t, a, ev.ID, fmt.Sprintf("Dish %d", i)).ID
	}

	var created atomic.Int32
	var wg sync.WaitGroup
	for _, id := range itemIDs {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			if w := claimRequest(handler, itemID, token, nil); w.Code == http.StatusCreated {
				created.Add(1)
			}
		}(id)
	}
	wg.Wait()

	if int(created.Load()) != numItems {
		t.Errorf("Expected %d successful claims, got %d", numItems, created.Load())
	}
	if n := len(a.Proj.AssignmentsForEvent(ev.ID)); n != numItems {
		t.Errorf("Expected %d assignments in the projection, got %d", numItems, n)
	}
}
