package bootstrap_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/bootstrap"
	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/config"
	"github.com/taibuivan/fichas/internal/session"
)

const seed = `
records:
  - {id: INS-001, name: Cimento, category: Aglomerantes, elementary_group: Concreto}
  - {id: INS-002, name: Areia, category: Agregados, elementary_group: Concreto}
links:
  - {parent: collector, child: elementary_group, parent_value: Estrutura, children: [Concreto]}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))
	return path
}

/*
TestOpen_Memory loads the seed into process memory with in-memory sessions.
*/
func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:     config.DriverMemory,
		SeedPath:        writeSeed(t),
		ImageDir:        filepath.Join(t.TempDir(), "missing"),
		SessionTTL:      time.Hour,
		DefaultPageSize: 20,
	}

	stores, err := bootstrap.Open(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &session.MemoryRepository{}, stores.Sessions)
	assert.Nil(t, stores.Images)
	assert.Nil(t, stores.Importer)
	assert.Empty(t, stores.Checks)

	result, err := stores.CatalogService(cfg, discardLogger()).Browse(context.Background(), catalog.Selection{}, catalog.PageRequest{Page: 1, Size: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Window.TotalItems)
}

/*
TestOpen_SQLite imports a seed into a fresh database file and reads it back.
*/
func TestOpen_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(dir, "catalog.db"),
		ImageDir:    dir,
		SessionTTL:  time.Hour,
	}
	ctx := context.Background()

	stores, err := bootstrap.Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer stores.Close()

	require.NotNil(t, stores.Importer)
	require.NotNil(t, stores.Images)
	require.Len(t, stores.Checks, 1)
	assert.Equal(t, "sqlite", stores.Checks[0].Name)
	assert.NoError(t, stores.Checks[0].Ping(ctx))

	records, rows, err := catalog.LoadSeedFile(writeSeed(t), stores.Schema)
	require.NoError(t, err)
	require.NoError(t, stores.Importer.Import(ctx, records, rows))

	parents, err := stores.Links.ParentValues(ctx, catalog.Link{Parent: catalog.FieldCollector, Child: catalog.FieldElementaryGroup})
	require.NoError(t, err)
	assert.Equal(t, []string{"Estrutura"}, parents)
}

/*
TestOpen_Failures reports startup errors for unusable settings.
*/
func TestOpen_Failures(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"missing_seed", config.Config{StoreDriver: config.DriverMemory, SeedPath: "/nonexistent/seed.yaml"}},
		{"unknown_driver", config.Config{StoreDriver: "oracle"}},
		{"bad_redis_url", config.Config{StoreDriver: config.DriverMemory, SeedPath: writeSeed(t), RedisURL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bootstrap.Open(context.Background(), &tt.cfg, discardLogger())
			assert.Error(t, err)
		})
	}
}
