package catalog_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/sqlite"
)

// Collector X maps to elementary groups A and B, but only A is used by a record.
// Collector Y maps to C.
func fixtureRecords() []*catalog.Record {
	return []*catalog.Record{
		{ID: "INS-001", Name: "Cimento CP-II", Facets: map[catalog.Field]string{
			catalog.FieldCategory: "Aglomerantes", catalog.FieldElementaryGroup: "A", catalog.FieldFamily: "Cimentos",
		}},
		{ID: "INS-002", Name: "Areia média", Facets: map[catalog.Field]string{
			catalog.FieldCategory: "Agregados", catalog.FieldElementaryGroup: "A",
		}},
		{ID: "INS-003", Name: "Tijolo O'Brien", Facets: map[catalog.Field]string{
			catalog.FieldCategory: "Alvenaria", catalog.FieldElementaryGroup: "C", catalog.FieldProject: "Obra Norte",
		}},
		{ID: "INS-004", Name: "Tinta 50%_off", Facets: map[catalog.Field]string{
			catalog.FieldCategory: "Pintura",
		}},
		{ID: "INS-005", Name: "Brita 1", Facets: map[catalog.Field]string{
			catalog.FieldCategory: "Agregados", catalog.FieldElementaryGroup: "C",
		}},
	}
}

func fixtureLinks() []catalog.LinkRow {
	link := catalog.Link{Parent: catalog.FieldCollector, Child: catalog.FieldElementaryGroup}
	return []catalog.LinkRow{
		{Link: link, ParentValue: "X", ChildValue: "A"},
		{Link: link, ParentValue: "X", ChildValue: "B"},
		{Link: link, ParentValue: "Y", ChildValue: "C"},
	}
}

// numberedRecords returns n records with ids INS-001..INS-n.
func numberedRecords(n int) []*catalog.Record {
	records := make([]*catalog.Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, &catalog.Record{
			ID:     fmt.Sprintf("INS-%03d", i),
			Name:   fmt.Sprintf("Insumo %d", i),
			Facets: map[catalog.Field]string{catalog.FieldCategory: fmt.Sprintf("C%d", i%3)},
		})
	}
	return records
}

func newMemoryStore(t *testing.T, records []*catalog.Record, links []catalog.LinkRow) *catalog.MemoryStore {
	t.Helper()
	store, err := catalog.NewMemoryStore(records, links)
	require.NoError(t, err)
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSQLiteDB opens an in-memory catalog database loaded with records and links.
func newSQLiteDB(t *testing.T, records []*catalog.Record, links []catalog.LinkRow) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.MemoryDSN, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, catalog.NewSQLRepository(db, catalog.DefaultSchema()).Import(context.Background(), records, links))

	return db
}
