// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/catalog"
	"github.com/danielhkuo/shared-friday/claims"
	"github.com/danielhkuo/shared-friday/cliparse"
	"github.com/danielhkuo/shared-friday/db"
	"github.com/danielhkuo/shared-friday/projection"
	"github.com/danielhkuo/shared-friday/recordstore"
)

// App holds every long-lived service. Handlers and CLI commands share one.
type App struct {
	Config cliparse.Config

	DB      *sql.DB
	Store   *recordstore.SQLStore
	Proj    *projection.Store
	Gate    *auth.Gate
	Users   *auth.Registry
	Claims  *claims.Service
	Catalog *catalog.Service

	unbind  func()
	ownConn bool
}

// Open connects to the configured database and builds the App on top of it.
// Close releases the connection.
func Open(ctx context.Context, cfg cliparse.Config) (*App, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a, err := New(ctx, conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	a.ownConn = true
	return a, nil
}

// New creates the schema on conn, wires the services and binds the
// projection to the record store.
func New(ctx context.Context, conn *sql.DB, cfg cliparse.Config) (*App, error) {
	if err := db.CreateSchema(conn); err != nil {
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}

	store := recordstore.New(conn)
	proj := projection.New()
	unbind, err := proj.Bind(ctx, store)
	if err != nil {
		return nil, err
	}

	gate := auth.NewGate(store, cfg.AdminCheckTimeout)
	claimSvc := claims.NewService(store, proj)

	slog.Info("services ready",
		"database", cfg.DatabaseType,
		"events", proj.Count("events"),
		"items", proj.Count("menuItems"),
		"assignments", proj.Count("assignments"),
	)

	return &App{
		Config:  cfg,
		DB:      conn,
		Store:   store,
		Proj:    proj,
		Gate:    gate,
		Users:   auth.NewRegistry(store, gate),
		Claims:  claimSvc,
		Catalog: catalog.NewService(store, proj, claimSvc, cfg.EventSlugSalt, cfg.MaxParticipantQuantity),
		unbind:  unbind,
	}, nil
}

// Close stops projection updates and, for Open, closes the database.
func (a *App) Close() error {
	if a.unbind != nil {
		a.unbind()
	}
	if a.ownConn {
		return a.DB.Close()
	}
	return nil
}
