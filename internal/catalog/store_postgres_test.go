package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

var pageColumns = []string{"id", "name", "category", "elementary_group", "family", "job", "project", "total_count"}

func newMockRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresRepository{db: mock, schema: DefaultSchema()}, mock
}

func text(value string) *string { return &value }

var null *string

/*
TestPostgresRepository_DistinctValues returns the sorted set of the column values.
*/
func TestPostgresRepository_DistinctValues(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT category FROM catalog_item WHERE category IS NOT NULL AND elementary_group = $1")).
		WithArgs("A").
		WillReturnRows(pgxmock.NewRows([]string{"category"}).AddRow("Agregados").AddRow("Aglomerantes").AddRow("Agregados"))

	values, err := repo.DistinctValues(context.Background(), FieldCategory, Eq(FieldElementaryGroup, "A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Aglomerantes", "Agregados"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_QueryPage scans records and reads the total from the window count.
*/
func TestPostgresRepository_QueryPage(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER() AS total_count")).
		WithArgs("A", 2, 0).
		WillReturnRows(pgxmock.NewRows(pageColumns).
			AddRow("INS-001", "Cimento CP-II", text("Aglomerantes"), text("A"), text("Cimentos"), null, null, 7).
			AddRow("INS-002", "Areia média", text("Agregados"), text("A"), null, null, null, 7))

	records, total, err := repo.QueryPage(context.Background(), Eq(FieldElementaryGroup, "A"), Order{}, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 7, total)
	assert.Equal(t, []*Record{
		{ID: "INS-001", Name: "Cimento CP-II", Facets: map[Field]string{FieldCategory: "Aglomerantes", FieldElementaryGroup: "A", FieldFamily: "Cimentos"}},
		{ID: "INS-002", Name: "Areia média", Facets: map[Field]string{FieldCategory: "Agregados", FieldElementaryGroup: "A"}},
	}, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_QueryPage_EmptyPageCounts falls back to a plain count
when the requested page has no rows to carry the total.
*/
func TestPostgresRepository_QueryPage_EmptyPageCounts(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER() AS total_count")).
		WithArgs("A", 20, 40).
		WillReturnRows(pgxmock.NewRows(pageColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM catalog_item WHERE elementary_group = $1")).
		WithArgs("A").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	records, total, err := repo.QueryPage(context.Background(), Eq(FieldElementaryGroup, "A"), Order{}, 40, 20)
	require.NoError(t, err)

	assert.Equal(t, 7, total)
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_Links reads the dependency map in both directions.
*/
func TestPostgresRepository_Links(t *testing.T) {
	repo, mock := newMockRepository(t)
	link := Link{Parent: FieldCollector, Child: FieldElementaryGroup}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT child_value FROM catalog_facet_link")).
		WithArgs("collector", "elementary_group", "X").
		WillReturnRows(pgxmock.NewRows([]string{"child_value"}).AddRow("B").AddRow("A"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT parent_value FROM catalog_facet_link")).
		WithArgs("collector", "elementary_group").
		WillReturnRows(pgxmock.NewRows([]string{"parent_value"}).AddRow("Y").AddRow("X"))

	children, err := repo.ChildrenOf(context.Background(), link, "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, children)

	parents, err := repo.ParentValues(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, parents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_Unavailable maps driver failures to STORE_UNAVAILABLE.
*/
func TestPostgresRepository_Unavailable(t *testing.T) {
	connErr := errors.New("connection reset by peer")
	ctx := context.Background()

	tests := []struct {
		name   string
		expect func(mock pgxmock.PgxPoolIface)
		run    func(repo *PostgresRepository) error
	}{
		{
			name:   "distinct_values",
			expect: func(mock pgxmock.PgxPoolIface) { mock.ExpectQuery("SELECT DISTINCT").WillReturnError(connErr) },
			run: func(repo *PostgresRepository) error {
				_, err := repo.DistinctValues(ctx, FieldCategory, All())
				return err
			},
		},
		{
			name:   "query_page",
			expect: func(mock pgxmock.PgxPoolIface) { mock.ExpectQuery("SELECT").WillReturnError(connErr) },
			run: func(repo *PostgresRepository) error {
				_, _, err := repo.QueryPage(ctx, All(), Order{}, 0, 20)
				return err
			},
		},
		{
			name:   "import_begin",
			expect: func(mock pgxmock.PgxPoolIface) { mock.ExpectBegin().WillReturnError(connErr) },
			run: func(repo *PostgresRepository) error {
				return repo.Import(ctx, []*Record{{ID: "INS-001", Name: "Cimento"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.expect(mock)

			err := tt.run(repo)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "STORE_UNAVAILABLE", appErr.Code)
			assert.ErrorIs(t, err, connErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

/*
TestImportBatch queues the record upserts before the link rows.
*/
func TestImportBatch(t *testing.T) {
	link := Link{Parent: FieldCollector, Child: FieldElementaryGroup}
	records := []*Record{
		{ID: "INS-001", Name: "Cimento CP-II", Facets: map[Field]string{FieldCategory: "Aglomerantes"}},
		{ID: "INS-002", Name: "Areia média"},
	}
	rows := []LinkRow{{Link: link, ParentValue: "X", ChildValue: "A"}}

	batch := importBatch(DefaultSchema(), records, rows)
	require.Equal(t, 3, batch.Len())

	queued := batch.QueuedQueries
	assert.Contains(t, queued[0].SQL, "INSERT INTO catalog_item")
	assert.Equal(t, []any{"INS-001", "Cimento CP-II", "Aglomerantes", nil, nil, nil, nil}, queued[0].Arguments)
	assert.Equal(t, []any{"INS-002", "Areia média", nil, nil, nil, nil, nil}, queued[1].Arguments)
	assert.Contains(t, queued[2].SQL, "INSERT INTO catalog_facet_link")
	assert.Equal(t, []any{"collector", "X", "elementary_group", "A"}, queued[2].Arguments)
}
