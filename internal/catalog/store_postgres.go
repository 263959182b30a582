package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/fichas/internal/platform/dberr"
)

// pgxQuerier is the part of *pgxpool.Pool the repository uses.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository implements [Repository] and [DependencyMap] on PostgreSQL.
type PostgresRepository struct {
	db     pgxQuerier
	schema Schema
}

func NewPostgresRepository(db *pgxpool.Pool, schema Schema) *PostgresRepository {
	return &PostgresRepository{db: db, schema: schema}
}

func (repository *PostgresRepository) DistinctValues(ctx context.Context, field Field, predicate Predicate) ([]string, error) {
	stmt, err := distinctStatement(dialectPostgres, repository.schema, field, predicate)
	if err != nil {
		return nil, err
	}
	return repository.values(ctx, stmt, "distinct_values")
}

func (repository *PostgresRepository) QueryPage(ctx context.Context, predicate Predicate, order Order, offset, limit int) ([]*Record, int, error) {
	stmt, err := pageStatement(dialectPostgres, repository.schema, predicate, order, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	rows, err := repository.db.Query(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Record", "query_page")
	}
	defer rows.Close()

	records := []*Record{}
	total := 0
	row := newRecordRow(repository.schema)

	for rows.Next() {
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, 0, dberr.Wrap(err, "Record", "scan_record")
		}
		records = append(records, row.record())
		total = row.total
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Record", "query_page")
	}

	if len(records) > 0 {
		return records, total, nil
	}

	// An empty page carries no window total.
	count, err := countStatement(dialectPostgres, repository.schema, predicate)
	if err != nil {
		return nil, 0, err
	}
	if err := repository.db.QueryRow(ctx, count.query, count.args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Record", "count_records")
	}

	return records, total, nil
}

func (repository *PostgresRepository) ChildrenOf(ctx context.Context, link Link, parentValue string) ([]string, error) {
	return repository.values(ctx, childrenStatement(dialectPostgres, link, parentValue), "children_of")
}

func (repository *PostgresRepository) ParentValues(ctx context.Context, link Link) ([]string, error) {
	return repository.values(ctx, parentsStatement(dialectPostgres, link), "parent_values")
}

// values runs a single-column query and returns the sorted set of values.
func (repository *PostgresRepository) values(ctx context.Context, stmt statement, action string) ([]string, error) {
	rows, err := repository.db.Query(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Facet", action)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "Facet", action)
	}

	return sortedSet(values), nil
}

// Import upserts records and adds dependency map rows in one transaction,
// sent as a single batch.
func (repository *PostgresRepository) Import(ctx context.Context, records []*Record, rows []LinkRow) error {
	err := pgx.BeginFunc(ctx, repository.db, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, importBatch(repository.schema, records, rows)).Close()
	})
	return dberr.Wrap(err, "Record", "import")
}

// importBatch queues the record upserts first, then the link rows.
func importBatch(schema Schema, records []*Record, rows []LinkRow) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, record := range records {
		stmt := upsertRecordStatement(dialectPostgres, schema, record)
		batch.Queue(stmt.query, stmt.args...)
	}
	for _, row := range rows {
		stmt := insertLinkStatement(dialectPostgres, row)
		batch.Queue(stmt.query, stmt.args...)
	}
	return batch
}
