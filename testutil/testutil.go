// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/catalog"
	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/cliparse"
	"github.com/danielhkuo/shared-friday/db"
	"github.com/danielhkuo/shared-friday/models"
)

// GetTestConfig returns a standard test configuration. The claim cooldown
// is kept tiny so tests can claim back to back.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   3318,
		DatabaseURL:            ":memory:",
		DatabaseType:           db.TypeSQLite,
		SessionSalt:            "test-session-salt",
		EventSlugSalt:          "test-slug-salt",
		AdminCheckTimeout:      time.Second,
		ClaimCooldown:          time.Nanosecond,
		MaxParticipantQuantity: 10,
	}
}

// SetupTestApp builds a fresh App on an in-memory SQLite database
func SetupTestApp(t *testing.T) *app.App {
	t.Helper()
	return SetupTestAppWithConfig(t, GetTestConfig())
}

func SetupTestAppWithConfig(t *testing.T, cfg cliparse.Config) *app.App {
	t.Helper()

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// CreateTestUser registers a user and returns its id and bearer token
func CreateTestUser(t *testing.T, a *app.App, displayName string) (uid, token string) {
	t.Helper()

	user, err := a.Users.CreateUser(context.Background(), displayName)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID, auth.SignToken(user.ID, a.Config.SessionSalt)
}

// CreateTestAdmin registers a user and grants it admin rights
func CreateTestAdmin(t *testing.T, a *app.App, displayName string) (uid, token string) {
	t.Helper()

	uid, token = CreateTestUser(t, a, displayName)
	if err := a.Users.GrantAdmin(context.Background(), uid, displayName); err != nil {
		t.Fatalf("Failed to grant admin: %v", err)
	}
	return uid, token
}

// AuthHeader builds the headers map for an authenticated request
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestEvent creates an event through the catalog service
func CreateTestEvent(t *testing.T, a *app.App, name string, active bool) models.Event {
	t.Helper()

	ev, err := a.Catalog.CreateEvent(context.Background(), "test-admin", models.CreateEventRequest{
		Name:     name,
		Date:     "2025-06-06",
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return ev
}

// AddTestItem adds an unclaimed main-course item to an event
func AddTestItem(t *testing.T, a *app.App, eventID, name string) models.MenuItem {
	t.Helper()

	item, err := a.Catalog.AddMenuItem(context.Background(), eventID, models.AddMenuItemRequest{
		Name:     name,
		Category: models.CategoryMain,
		Quantity: 1,
	}, catalog.Creator{})
	if err != nil {
		t.Fatalf("Failed to add test item: %v", err)
	}
	return item
}

// ClaimTestItem claims an item directly through the claims service
func ClaimTestItem(t *testing.T, a *app.App, itemID, uid, name string) string {
	t.Helper()

	id, err := a.Claims.Claim(context.Background(), claims.ClaimRequest{
		MenuItemID: itemID,
		UserID:     uid,
		UserName:   name,
		Quantity:   1,
	})
	if err != nil {
		t.Fatalf("Failed to claim test item: %v", err)
	}
	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	// English messages keep assertions readable
	req.Header.Set("Accept-Language", "en")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
