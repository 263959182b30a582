package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/catalog"
)

const seedYAML = `
records:
  - {id: INS-001, name: Cimento CP-II, category: Aglomerantes, elementary_group: A}
  - {id: INS-002, name: Areia média, category: Agregados, family: ""}
  - id: INS-003
    name: Tijolo O'Brien
    category: Alvenaria
    project: null
links:
  - {parent: collector, child: elementary_group, parent_value: X, children: [A, B]}
`

/*
TestLoadSeed decodes records and dependency rows, dropping empty facets.
*/
func TestLoadSeed(t *testing.T) {
	records, rows, err := catalog.LoadSeed(strings.NewReader(seedYAML), catalog.DefaultSchema())
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "Tijolo O'Brien", records[2].Name)
	assert.Equal(t, map[catalog.Field]string{catalog.FieldCategory: "Agregados"}, records[1].Facets)
	assert.NotContains(t, records[2].Facets, catalog.FieldProject)

	require.Len(t, rows, 2)
	assert.Equal(t, "X", rows[1].ParentValue)
	assert.Equal(t, "B", rows[1].ChildValue)
}

/*
TestLoadSeed_Invalid rejects unknown columns and undeclared links.
*/
func TestLoadSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown_column", "records:\n  - {id: INS-1, name: x, colour: red}\n"},
		{"virtual_column", "records:\n  - {id: INS-1, name: x, collector: X}\n"},
		{"undeclared_link", "links:\n  - {parent: family, child: job, parent_value: F, children: [J]}\n"},
		{"bad_yaml", "records: {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := catalog.LoadSeed(strings.NewReader(tt.yaml), catalog.DefaultSchema())
			assert.Error(t, err)
		})
	}
}

/*
TestNewMemoryStore_DuplicateID rejects non-unique record ids.
*/
func TestNewMemoryStore_DuplicateID(t *testing.T) {
	_, err := catalog.NewMemoryStore([]*catalog.Record{{ID: "INS-001"}, {ID: "INS-001"}}, nil)
	assert.Error(t, err)
}

/*
TestMemoryStore_QueryPage checks ordering, totals and that results are copies.
*/
func TestMemoryStore_QueryPage(t *testing.T) {
	store := newMemoryStore(t, fixtureRecords(), fixtureLinks())
	ctx := context.Background()

	records, total, err := store.QueryPage(ctx, catalog.Eq(catalog.FieldCategory, "Agregados"), catalog.Order{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "INS-002", records[0].ID)
	assert.Equal(t, "INS-005", records[1].ID)

	records[0].Facets[catalog.FieldCategory] = "mutated"
	again, _, err := store.QueryPage(ctx, catalog.Eq(catalog.FieldCategory, "Agregados"), catalog.Order{}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Agregados", again[0].Facets[catalog.FieldCategory])

	desc, _, err := store.QueryPage(ctx, catalog.All(), catalog.Order{Field: catalog.FieldName, Desc: true}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"INS-004", "INS-003"}, []string{desc[0].ID, desc[1].ID})

	empty, total, err := store.QueryPage(ctx, catalog.All(), catalog.Order{}, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 5, total)
}
