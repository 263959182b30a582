package catalog

import (
	"context"
	"database/sql"

	"github.com/taibuivan/fichas/internal/platform/dberr"
)

// SQLRepository implements [Repository] and [DependencyMap] over database/sql
// with SQLite syntax. It is used with the embedded modernc.org/sqlite driver.
type SQLRepository struct {
	db     *sql.DB
	schema Schema
}

func NewSQLRepository(db *sql.DB, schema Schema) *SQLRepository {
	return &SQLRepository{db: db, schema: schema}
}

func (repository *SQLRepository) DistinctValues(ctx context.Context, field Field, predicate Predicate) ([]string, error) {
	stmt, err := distinctStatement(dialectSQLite, repository.schema, field, predicate)
	if err != nil {
		return nil, err
	}
	return repository.values(ctx, stmt, "distinct_values")
}

func (repository *SQLRepository) QueryPage(ctx context.Context, predicate Predicate, order Order, offset, limit int) ([]*Record, int, error) {
	stmt, err := pageStatement(dialectSQLite, repository.schema, predicate, order, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	rows, err := repository.db.QueryContext(ctx, stmt.query, stmt.args...)
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

	count, err := countStatement(dialectSQLite, repository.schema, predicate)
	if err != nil {
		return nil, 0, err
	}
	if err := repository.db.QueryRowContext(ctx, count.query, count.args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Record", "count_records")
	}

	return records, total, nil
}

func (repository *SQLRepository) ChildrenOf(ctx context.Context, link Link, parentValue string) ([]string, error) {
	return repository.values(ctx, childrenStatement(dialectSQLite, link, parentValue), "children_of")
}

func (repository *SQLRepository) ParentValues(ctx context.Context, link Link) ([]string, error) {
	return repository.values(ctx, parentsStatement(dialectSQLite, link), "parent_values")
}

func (repository *SQLRepository) values(ctx context.Context, stmt statement, action string) ([]string, error) {
	rows, err := repository.db.QueryContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Facet", action)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, dberr.Wrap(err, "Facet", action)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Facet", action)
	}

	return sortedSet(values), nil
}

// Import upserts records and adds dependency map rows in one transaction.
func (repository *SQLRepository) Import(ctx context.Context, records []*Record, rows []LinkRow) error {
	tx, err := repository.db.BeginTx(ctx, nil)
	if err != nil {
		return dberr.Wrap(err, "Record", "import_begin")
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		stmt := upsertRecordStatement(dialectSQLite, repository.schema, record)
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return dberr.Wrap(err, "Record", "import_record")
		}
	}

	for _, row := range rows {
		stmt := insertLinkStatement(dialectSQLite, row)
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return dberr.Wrap(err, "Facet", "import_link")
		}
	}

	if err := tx.Commit(); err != nil {
		return dberr.Wrap(err, "Record", "import_commit")
	}
	return nil
}
