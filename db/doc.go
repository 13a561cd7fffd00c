// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(db.TypeSQLite, "shared-friday.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite (modernc.org/sqlite, no cgo) is the default. PostgreSQL uses lib/pq.

# Schema Creation

CreateSchema initializes the document table:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

A single table holds every logical collection:

  - records: (collection, id) → JSON document plus a version counter

Collections stored in it:

	events/{id}
	menuItems/{id}
	assignments/{id}
	admins/{uid}
	users/{uid}
	presetLists/{id}

There are no foreign keys. Like the real-time database this models, the
store only guarantees atomicity per record; cascades are performed by the
catalog and claims services.
*/
package db
