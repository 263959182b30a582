// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/taibuivan/fichas/internal/platform/database/schema"
	"github.com/taibuivan/fichas/internal/platform/sqlite"
)

// # SQL rendering
//
// Predicates are rendered with every value bound as a parameter. Column names
// come from the [Schema], never from the request.

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// likeEscape is the escape character declared in every LIKE clause.
const likeEscape = `\`

// sqlBuilder accumulates bound arguments while rendering one statement.
type sqlBuilder struct {
	dialect dialect
	schema  Schema
	args    []any
}

func newSQLBuilder(d dialect, s Schema) *sqlBuilder {
	return &sqlBuilder{dialect: d, schema: s}
}

// bind appends value to the arguments and returns its placeholder.
func (b *sqlBuilder) bind(value any) string {
	b.args = append(b.args, value)
	if b.dialect == dialectPostgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

func (b *sqlBuilder) column(field Field) (string, error) {
	column, ok := b.schema.Column(field)
	if !ok {
		return "", fmt.Errorf("catalog: field %q has no column", field)
	}
	return column, nil
}

// where renders predicate as a boolean SQL expression.
func (b *sqlBuilder) where(predicate Predicate) (string, error) {
	switch predicate.Op {
	case OpAll, "":
		return "1 = 1", nil

	case OpAnd, OpOr:
		if len(predicate.Terms) == 0 {
			if predicate.Op == OpAnd {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}

		parts := make([]string, 0, len(predicate.Terms))
		for _, term := range predicate.Terms {
			part, err := b.where(term)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}

		joiner := " AND "
		if predicate.Op == OpOr {
			joiner = " OR "
		}
		return "(" + strings.Join(parts, joiner) + ")", nil

	case OpEq:
		column, err := b.column(predicate.Field)
		if err != nil {
			return "", err
		}
		return column + " = " + b.bind(predicate.Value), nil

	case OpIn:
		column, err := b.column(predicate.Field)
		if err != nil {
			return "", err
		}
		if len(predicate.Values) == 0 {
			return "1 = 0", nil
		}
		if b.dialect == dialectPostgres {
			return column + " = ANY(" + b.bind(slices.Clone(predicate.Values)) + ")", nil
		}
		placeholders := make([]string, len(predicate.Values))
		for i, value := range predicate.Values {
			placeholders[i] = b.bind(value)
		}
		return column + " IN (" + strings.Join(placeholders, ", ") + ")", nil

	case OpContains:
		column, err := b.column(predicate.Field)
		if err != nil {
			return "", err
		}
		pattern := "%" + escapeLike(predicate.Value) + "%"
		if b.dialect == dialectPostgres {
			return column + " ILIKE " + b.bind(pattern) + " ESCAPE '" + likeEscape + "'", nil
		}
		return sqlite.FoldFunction + "(" + column + ") LIKE " + sqlite.FoldFunction + "(" + b.bind(pattern) + ") ESCAPE '" + likeEscape + "'", nil
	}

	return "", fmt.Errorf("catalog: unknown predicate op %q", predicate.Op)
}

// escapeLike makes text match itself literally inside a LIKE pattern.
func escapeLike(text string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return replacer.Replace(text)
}

// # Statements

type statement struct {
	query string
	args  []any
}

func distinctStatement(d dialect, s Schema, field Field, predicate Predicate) (statement, error) {
	b := newSQLBuilder(d, s)

	column, err := b.column(field)
	if err != nil {
		return statement{}, err
	}

	where, err := b.where(predicate)
	if err != nil {
		return statement{}, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL AND %s`,
		column, schema.CatalogItem.Table, column, where,
	)
	return statement{query: query, args: b.args}, nil
}

func pageStatement(d dialect, s Schema, predicate Predicate, order Order, offset, limit int) (statement, error) {
	b := newSQLBuilder(d, s)

	where, err := b.where(predicate)
	if err != nil {
		return statement{}, err
	}

	orderColumn, err := b.column(order.field())
	if err != nil {
		return statement{}, err
	}

	direction := "ASC"
	if order.Desc {
		direction = "DESC"
	}

	orderBy := orderColumn + " " + direction
	if order.field() != FieldID {
		orderBy += ", " + schema.CatalogItem.ID + " ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s
	`,
		strings.Join(recordColumns(s), ", "),
		schema.CatalogItem.Table,
		where,
		orderBy,
		b.bind(limit), b.bind(offset),
	)
	return statement{query: query, args: b.args}, nil
}

// countStatement is used when a page comes back empty and the window total
// cannot be read from a row.
func countStatement(d dialect, s Schema, predicate Predicate) (statement, error) {
	b := newSQLBuilder(d, s)

	where, err := b.where(predicate)
	if err != nil {
		return statement{}, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, schema.CatalogItem.Table, where)
	return statement{query: query, args: b.args}, nil
}

func childrenStatement(d dialect, link Link, parentValue string) statement {
	b := newSQLBuilder(d, Schema{})
	table := schema.CatalogFacetLink

	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s = %s AND %s = %s AND %s = %s`,
		table.ChildValue, table.Table,
		table.ParentField, b.bind(string(link.Parent)),
		table.ChildField, b.bind(string(link.Child)),
		table.ParentValue, b.bind(parentValue),
	)
	return statement{query: query, args: b.args}
}

func parentsStatement(d dialect, link Link) statement {
	b := newSQLBuilder(d, Schema{})
	table := schema.CatalogFacetLink

	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s = %s AND %s = %s`,
		table.ParentValue, table.Table,
		table.ParentField, b.bind(string(link.Parent)),
		table.ChildField, b.bind(string(link.Child)),
	)
	return statement{query: query, args: b.args}
}

// # Row scanning

// recordColumns lists the selected columns: id, name, then every concrete facet.
func recordColumns(s Schema) []string {
	columns := []string{schema.CatalogItem.ID, schema.CatalogItem.Name}
	for _, facet := range s.Facets {
		if !facet.IsVirtual() {
			columns = append(columns, facet.Column)
		}
	}
	return columns
}

// recordRow holds scan targets for one row of [recordColumns] plus the window total.
// Nullable facets scan into *string, which both pgx and database/sql support.
type recordRow struct {
	fields []Field
	id     string
	name   string
	facets []*string
	total  int
}

func newRecordRow(s Schema) *recordRow {
	row := &recordRow{}
	for _, facet := range s.Facets {
		if !facet.IsVirtual() {
			row.fields = append(row.fields, facet.Field)
		}
	}
	row.facets = make([]*string, len(row.fields))
	return row
}

func (row *recordRow) targets() []any {
	targets := []any{&row.id, &row.name}
	for i := range row.facets {
		targets = append(targets, &row.facets[i])
	}
	return append(targets, &row.total)
}

func (row *recordRow) record() *Record {
	record := &Record{ID: row.id, Name: row.name, Facets: make(map[Field]string, len(row.fields))}
	for i, field := range row.fields {
		if row.facets[i] != nil {
			record.Facets[field] = *row.facets[i]
		}
		row.facets[i] = nil
	}
	return record
}

// # Import statements

// upsertRecordStatement inserts record or overwrites the row with the same id.
func upsertRecordStatement(d dialect, s Schema, record *Record) statement {
	b := newSQLBuilder(d, s)
	columns := recordColumns(s)

	placeholders := []string{b.bind(record.ID), b.bind(record.Name)}
	updates := []string{fmt.Sprintf("%s = excluded.%s", schema.CatalogItem.Name, schema.CatalogItem.Name)}
	for _, facet := range s.Facets {
		if facet.IsVirtual() {
			continue
		}
		var value any
		if v, ok := record.Value(facet.Field); ok {
			value = v
		}
		placeholders = append(placeholders, b.bind(value))
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", facet.Column, facet.Column))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		schema.CatalogItem.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		schema.CatalogItem.ID,
		strings.Join(updates, ", "),
	)
	return statement{query: query, args: b.args}
}

// insertLinkStatement adds one dependency map row; existing rows are kept.
func insertLinkStatement(d dialect, row LinkRow) statement {
	b := newSQLBuilder(d, Schema{})
	table := schema.CatalogFacetLink

	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (%s, %s, %s, %s) ON CONFLICT DO NOTHING",
		table.Table, table.ParentField, table.ParentValue, table.ChildField, table.ChildValue,
		b.bind(string(row.Parent)), b.bind(row.ParentValue), b.bind(string(row.Child)), b.bind(row.ChildValue),
	)
	return statement{query: query, args: b.args}
}
