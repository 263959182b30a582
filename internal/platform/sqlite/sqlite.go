// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded catalog database used when no PostgreSQL
// server is configured (local runs, the CLI and store tests).
//
// # Architecture
//
// It mirrors the postgres package: one long-lived handle built at startup,
// validated with a ping, with the catalog tables created if missing. Importing
// the package also registers [FoldFunction] on the driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"
)

//go:embed schema.sql
var schemaSQL string

const (
	busyTimeout = 5 * time.Second
	pingTimeout = 2 * time.Second
)

// MemoryDSN opens a private in-memory database. Use it with a single connection.
const MemoryDSN = ":memory:"

// Open opens the database at path, applies the catalog schema and pings it.
//
// An in-memory database exists per connection, so the pool is pinned to one.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	dsn := path
	if path != MemoryDSN {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeout.Milliseconds())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	if path == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	logger.Info("sqlite database opened", slog.String("path", path))

	return db, nil
}

// Ping verifies that the database answers.
func Ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}
