// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity, the known-user registry and the
admin gate.

# Caller Tokens

Tokens bind a user id to an HMAC-SHA256 signature:

	token := auth.SignToken(uid, salt)     // "<uid>.<sig>"
	uid, err := auth.ParseToken(token, salt)

Requests carry the token as "Authorization: Bearer <token>":

	uid, err := auth.CallerFromRequest(r, cfg.SessionSalt)

Signatures are deterministic, so nothing about a session is stored beyond
the users/{uid} record.

# Registry

Registry keeps users/{uid} records. CreateUser with an empty display name
is the anonymous-session fallback. KnownUserIDs feeds ghost-assignment
cleanup. DeleteUser is the privileged identity removal and checks the
caller with the gate before touching anything.

# Admin Gate

	err := gate.RequireAdmin(ctx, uid)

Looks up admins/{uid} and requires is_active. The lookup is bounded by the
configured timeout; a timeout, a store error or a missing record all deny
access.

# Share Slugs

	slug := auth.GenerateShareSlug(eventID, salt)

Base62, deterministic from the event id and salt.
*/
package auth
