// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/models"
	"github.com/danielhkuo/shared-friday/testutil"
)

func TestCreateSession(t *testing.T) {
	a := testutil.SetupTestApp(t)
	handler := NewSessionHandler(a)

	t.Run("named session", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/sessions", models.CreateSessionRequest{DisplayName: "  Dana  "}, nil)
		w := httptest.NewRecorder()
		handler.CreateSession(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateSessionResponse
		testutil.AssertJSON(t, w, &resp)

		uid, err := auth.ParseToken(resp.Token, a.Config.SessionSalt)
		if err != nil {
			t.Fatalf("Token did not parse: %v", err)
		}
		if uid != resp.UserID {
			t.Errorf("Token names %s, response names %s", uid, resp.UserID)
		}

		user, err := a.Users.User(context.Background(), uid)
		if err != nil {
			t.Fatalf("User not stored: %v", err)
		}
		if user.DisplayName != "Dana" || user.IsAnonymous {
			t.Errorf("Unexpected user: %+v", user)
		}
	})

	t.Run("empty body is anonymous", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/sessions", nil, nil)
		w := httptest.NewRecorder()
		handler.CreateSession(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateSessionResponse
		testutil.AssertJSON(t, w, &resp)

		user, err := a.Users.User(context.Background(), resp.UserID)
		if err != nil {
			t.Fatalf("User not stored: %v", err)
		}
		if !user.IsAnonymous {
			t.Error("Expected an anonymous user")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sessions", bytes.NewReader([]byte("{nope")))
		w := httptest.NewRecorder()
		handler.CreateSession(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
