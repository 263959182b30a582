// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap builds the long-lived stores from configuration.

Both entry points share it: cmd/api serves them over HTTP and cmd/fichasctl
queries them from the terminal.

Store selection:

  - STORE_DRIVER picks the record store: postgres (pgxpool), sqlite (embedded file) or memory (YAML seed).
  - REDIS_URL, when set, adds the facet cache and moves sessions to Redis. Imports
    run through the same stores retire the cached option lists.
  - IMAGE_DIR, when it exists, serves technical-sheet images.
*/
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/fichas/internal/api"
	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/config"
	pgstore "github.com/taibuivan/fichas/internal/platform/postgres"
	redisstore "github.com/taibuivan/fichas/internal/platform/redis"
	"github.com/taibuivan/fichas/internal/platform/sqlite"
	"github.com/taibuivan/fichas/internal/session"
)

// Stores holds every store built from one [config.Config].
type Stores struct {
	Schema   catalog.Schema
	Records  catalog.Repository
	Links    catalog.DependencyMap
	Images   catalog.ImageStore
	Sessions session.Repository

	// Importer is nil for the memory driver.
	Importer catalog.Importer

	// Checks feeds the /ready endpoint.
	Checks []api.Check

	closers []func() error
	logger  *slog.Logger
}

// Open connects the configured stores. On error everything opened so far is closed.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	stores := &Stores{Schema: catalog.DefaultSchema(), logger: logger}

	if err := stores.openRecords(ctx, cfg); err != nil {
		stores.Close()
		return nil, err
	}

	if err := stores.openRedis(ctx, cfg); err != nil {
		stores.Close()
		return nil, err
	}

	if err := stores.openImages(cfg); err != nil {
		stores.Close()
		return nil, err
	}

	return stores, nil
}

// CatalogService wires the catalog service over the opened stores.
func (stores *Stores) CatalogService(cfg *config.Config, logger *slog.Logger) *catalog.Service {
	return catalog.NewService(stores.Schema, stores.Records, stores.Links, stores.Images, cfg.FacetCrossFilter, logger)
}

// Close releases every connection in reverse opening order.
func (stores *Stores) Close() {
	for i := len(stores.closers) - 1; i >= 0; i-- {
		if err := stores.closers[i](); err != nil {
			stores.logger.Error("store_close_failed", slog.Any("error", err))
		}
	}
	stores.closers = nil
}

func (stores *Stores) openRecords(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, stores.logger)
		if err != nil {
			return err
		}
		stores.closers = append(stores.closers, func() error { pool.Close(); return nil })
		stores.usePostgres(pool)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, stores.logger)
		if err != nil {
			return err
		}
		stores.closers = append(stores.closers, db.Close)
		stores.useSQLite(db)

	case config.DriverMemory:
		store, err := catalog.LoadMemoryStore(cfg.SeedPath, stores.Schema)
		if err != nil {
			return err
		}
		stores.Records, stores.Links = store, store
		stores.logger.Info("memory_store_loaded", slog.String("path", cfg.SeedPath), slog.Int("records", store.Len()))

	default:
		return fmt.Errorf("bootstrap: unknown store driver %q", cfg.StoreDriver)
	}

	return nil
}

func (stores *Stores) usePostgres(pool *pgxpool.Pool) {
	repository := catalog.NewPostgresRepository(pool, stores.Schema)
	stores.Records, stores.Links, stores.Importer = repository, repository, repository
	stores.Checks = append(stores.Checks, api.Check{
		Name: config.DriverPostgres,
		Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	})
}

func (stores *Stores) useSQLite(db *sql.DB) {
	repository := catalog.NewSQLRepository(db, stores.Schema)
	stores.Records, stores.Links, stores.Importer = repository, repository, repository
	stores.Checks = append(stores.Checks, api.Check{
		Name: config.DriverSQLite,
		Ping: func(ctx context.Context) error { return sqlite.Ping(ctx, db) },
	})
}

// openRedis wraps the record store with the facet cache and picks the session
// repository. Without REDIS_URL sessions live in process memory.
func (stores *Stores) openRedis(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisURL == "" {
		stores.Sessions = session.NewMemoryRepository(cfg.SessionTTL)
		return nil
	}

	client, err := redisstore.NewClient(ctx, cfg.RedisURL, stores.logger)
	if err != nil {
		return err
	}
	stores.closers = append(stores.closers, client.Close)
	stores.useRedis(client, cfg)
	return nil
}

func (stores *Stores) useRedis(client *goredis.Client, cfg *config.Config) {
	stores.Records = catalog.NewCachedRepository(stores.Records, client, cfg.CacheTTL, stores.logger)
	stores.Links = catalog.NewCachedDependencyMap(stores.Links, client, cfg.CacheTTL, stores.logger)
	if stores.Importer != nil {
		stores.Importer = catalog.NewCachedImporter(stores.Importer, client, stores.logger)
	}
	stores.Sessions = session.NewRedisRepository(client, cfg.SessionTTL)
	stores.Checks = append(stores.Checks, api.Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, client) },
	})
}

// openImages serves images from IMAGE_DIR. A missing directory disables images
// instead of failing startup: every record then reports has_image=false.
func (stores *Stores) openImages(cfg *config.Config) error {
	if cfg.ImageDir == "" {
		return nil
	}

	info, err := os.Stat(cfg.ImageDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		stores.logger.Warn("image_dir_missing", slog.String("path", cfg.ImageDir))
		return nil
	case err != nil:
		return fmt.Errorf("bootstrap: image dir: %w", err)
	case !info.IsDir():
		return fmt.Errorf("bootstrap: image dir %s is not a directory", cfg.ImageDir)
	}

	stores.Images = catalog.NewDirImageStore(cfg.ImageDir)
	return nil
}
