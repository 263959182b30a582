// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported record store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the catalog API server and CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Record store selection: postgres, sqlite or memory
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Embedded database (SQLite)
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/catalog.db"`

	// SeedPath is a YAML catalog loaded by the memory driver.
	SeedPath string `env:"SEED_PATH" envDefault:"./data/seed.yaml"`

	// Key-Value Cache (Redis). Optional: without it sessions live in process
	// memory and facet lookups go straight to the store.
	RedisURL   string        `env:"REDIS_URL"`
	CacheTTL   time.Duration `env:"CACHE_TTL"   envDefault:"5m"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// ImageDir holds one technical-sheet image per record, named by record id.
	ImageDir string `env:"IMAGE_DIR" envDefault:"./data/images"`

	// Browsing behaviour
	DefaultPageSize  int  `env:"DEFAULT_PAGE_SIZE"  envDefault:"20"`
	FacetCrossFilter bool `env:"FACET_CROSS_FILTER" envDefault:"false"`

	// Cross-Origin Resource Sharing. Every origin is allowed in development.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse maps environment variables onto a [Config] without validating it, so
// callers such as the CLI can apply flag overrides first.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %q store driver", c.StoreDriver)
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.DefaultPageSize < 1 {
		return fmt.Errorf("config: DEFAULT_PAGE_SIZE must be at least 1, got %d", c.DefaultPageSize)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowsOrigin reports whether browsers served from origin may call the API.
func (c *Config) AllowsOrigin(origin string) bool {
	return c.IsDevelopment() || slices.Contains(c.AllowedOrigins, origin)
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
