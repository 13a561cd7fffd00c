// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Shared Friday API server.

Shared Friday coordinates a recurring potluck: an organizer publishes a
menu, participants claim the dishes they will bring, and each dish is
brought by at most one person.

# Starting the Server

The server reads flags, then the environment, then a .env file:

	SESSION_SALT=... EVENT_SLUG_SALT=... go run .

Or with flags:

	go run . serve -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - SESSION_SALT (--session-salt): Secret for caller token signatures
  - EVENT_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or sqlite file (required for postgres)
  - ADMIN_CHECK_TIMEOUT, CLAIM_COOLDOWN, MAX_PARTICIPANT_QUANTITY

# Commands

	serve                        Run the HTTP API (default)
	create-user [name]           Print a new user id and token
	grant-admin <uid> [name]     Make a user an organizer
	cleanup-ghosts               Drop claims of deleted users
	reconcile                    Repair pointer and claim drift

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - claims: Claim protocol, lifecycle and repair
  - catalog: Events, menu items and preset lists
  - recordstore: Document store over database/sql
  - projection: In-memory read model kept current by store subscriptions
  - auth: Caller tokens, admin gate and user registry
  - i18n: Hebrew and English messages
  - app: Service wiring shared by the server and CLI
  - middleware, models, db, cliparse, testutil

See package documentation for each component.
*/
package main
