// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog implements filtered browsing over the insumo catalog.

A record is filtered by a free-text search and by categorical facets. Some facets
depend on the selection of another facet through a dependency map (for example
the elementary groups reachable from a collector).

Core Responsibility:

  - Resolve: compute the legal options of every facet and clear stale selections.
  - Compile: turn a resolved selection into one structured [Predicate].
  - Query: run the predicate against a [Repository] and clamp the page window.
  - Images: serve the technical-sheet image attached to a record.

Stores (PostgreSQL, SQLite, in-memory) only ever receive a [Predicate]; user text
reaches them as bound parameters, never as query syntax.
*/
package catalog

import (
	"fmt"
	"maps"
	"strings"

	"github.com/taibuivan/fichas/internal/platform/database/schema"
)

// # Fields

// Field identifies a record attribute that can be searched, sorted or faceted.
type Field string

const (
	FieldID              Field = "id"
	FieldName            Field = "name"
	FieldCategory        Field = "category"
	FieldCollector       Field = "collector"
	FieldElementaryGroup Field = "elementary_group"
	FieldFamily          Field = "family"
	FieldJob             Field = "job"
	FieldProject         Field = "project"
)

// AllValues is the "no filter" choice shown first in every facet dropdown.
// It is never part of a resolved option list.
const AllValues = "Todos"

// # Records

// Record is one row of the catalog.
//
// A facet with no value is absent from Facets. Absence is distinct from every
// real value: it is never listed as an option and never matches an exact filter.
type Record struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Facets   map[Field]string `json:"facets"`
	HasImage bool             `json:"has_image"`
}

// Value returns the value of field on the record, and whether it is present.
func (r *Record) Value(field Field) (string, bool) {
	switch field {
	case FieldID:
		return r.ID, true
	case FieldName:
		return r.Name, true
	}
	value, ok := r.Facets[field]
	return value, ok
}

// Clone returns a deep copy, so callers can annotate it without touching the source.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Facets = maps.Clone(r.Facets)
	if clone.Facets == nil {
		clone.Facets = map[Field]string{}
	}
	return &clone
}

// Image is the technical sheet attached to a record.
type Image struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
}

// # Facets

// Facet describes one categorical filter dimension.
type Facet struct {
	Field Field  `json:"field"`
	Label string `json:"label"`

	// Column is the record column holding the value. It is empty for virtual
	// facets whose values only exist in the dependency map.
	Column string `json:"-"`

	// Parent names the facet this one depends on, if any.
	Parent Field `json:"parent,omitempty"`
}

// IsVirtual reports whether the facet has no record column.
func (f Facet) IsVirtual() bool { return f.Column == "" }

// Link is one edge of the dependency map: values of Child reachable from a
// value of Parent.
type Link struct {
	Parent Field
	Child  Field
}

func (l Link) String() string { return string(l.Parent) + ">" + string(l.Child) }

// Schema is the catalog layout the resolver, compiler and stores agree on.
type Schema struct {
	// Facets are listed parents first.
	Facets []Facet

	// SearchFields are matched by the free-text search (OR across fields).
	SearchFields []Field

	// Sortable fields accepted in an [Order].
	Sortable []Field

	columns map[Field]string
}

// DefaultSchema returns the insumo catalog layout backed by [schema.CatalogItem].
func DefaultSchema() Schema {
	item := schema.CatalogItem

	s := Schema{
		Facets: []Facet{
			{Field: FieldCategory, Label: "Categoria", Column: item.Category},
			{Field: FieldCollector, Label: "Coletor"},
			{Field: FieldElementaryGroup, Label: "Grupo elementar", Column: item.ElementaryGroup, Parent: FieldCollector},
			{Field: FieldFamily, Label: "Família", Column: item.Family},
			{Field: FieldJob, Label: "Serviço", Column: item.Job},
			{Field: FieldProject, Label: "Obra", Column: item.Project},
		},
		SearchFields: []Field{FieldID, FieldName},
		Sortable:     []Field{FieldID, FieldName},
	}

	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Validate checks that the facet graph is usable and builds the column index.
//
// Rules: field names are unique, a parent is declared before its children, and
// every virtual facet is the parent of at least one other facet (otherwise it
// could never constrain anything).
func (s *Schema) Validate() error {
	seen := make(map[Field]Facet, len(s.Facets))

	s.columns = map[Field]string{
		FieldID:   schema.CatalogItem.ID,
		FieldName: schema.CatalogItem.Name,
	}

	for _, facet := range s.Facets {
		if _, dup := seen[facet.Field]; dup || facet.Field == FieldID || facet.Field == FieldName {
			return fmt.Errorf("catalog: duplicate facet %q", facet.Field)
		}
		if facet.Parent != "" {
			if _, ok := seen[facet.Parent]; !ok {
				return fmt.Errorf("catalog: facet %q depends on %q which is not declared before it", facet.Field, facet.Parent)
			}
		}
		seen[facet.Field] = facet
		if !facet.IsVirtual() {
			s.columns[facet.Field] = facet.Column
		}
	}

	for _, facet := range s.Facets {
		if facet.IsVirtual() && len(s.Children(facet.Field)) == 0 {
			return fmt.Errorf("catalog: virtual facet %q has no dependent facet", facet.Field)
		}
	}

	for _, field := range append(append([]Field{}, s.SearchFields...), s.Sortable...) {
		if _, ok := s.columns[field]; !ok {
			return fmt.Errorf("catalog: field %q has no column", field)
		}
	}

	return nil
}

// Facet looks up a facet by field.
func (s Schema) Facet(field Field) (Facet, bool) {
	for _, facet := range s.Facets {
		if facet.Field == field {
			return facet, true
		}
	}
	return Facet{}, false
}

// Children returns the facets that depend on parent.
func (s Schema) Children(parent Field) []Facet {
	var children []Facet
	for _, facet := range s.Facets {
		if facet.Parent == parent {
			children = append(children, facet)
		}
	}
	return children
}

// Links returns every dependency map edge of the schema.
func (s Schema) Links() []Link {
	var links []Link
	for _, facet := range s.Facets {
		if facet.Parent != "" {
			links = append(links, Link{Parent: facet.Parent, Child: facet.Field})
		}
	}
	return links
}

// Column returns the record column storing field.
func (s Schema) Column(field Field) (string, bool) {
	column, ok := s.columns[field]
	return column, ok
}

// IsSortable reports whether field may be used in an [Order].
func (s Schema) IsSortable(field Field) bool {
	for _, f := range s.Sortable {
		if f == field {
			return true
		}
	}
	return false
}

// # Selection

// Selection holds the user's current filter choices: one optional value per
// facet plus a free-text search.
//
// It is a value type. Every mutator returns a modified copy.
type Selection struct {
	Search string           `json:"search,omitempty"`
	Facets map[Field]string `json:"facets,omitempty"`
}

// IsUnset reports whether a raw facet value means "no filter".
func IsUnset(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == AllValues
}

// Value returns the selected value of field, or "" when unset.
func (s Selection) Value(field Field) string {
	return s.Facets[field]
}

// IsSet reports whether field has a concrete selected value.
func (s Selection) IsSet(field Field) bool {
	return s.Facets[field] != ""
}

// IsEmpty reports whether nothing is filtered.
func (s Selection) IsEmpty() bool {
	return s.Search == "" && len(s.Facets) == 0
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	return Selection{Search: s.Search, Facets: maps.Clone(s.Facets)}
}

// With returns a copy with field set to value; "" and [AllValues] unset it.
func (s Selection) With(field Field, value string) Selection {
	if IsUnset(value) {
		return s.Without(field)
	}
	clone := s.Clone()
	if clone.Facets == nil {
		clone.Facets = make(map[Field]string)
	}
	clone.Facets[field] = strings.TrimSpace(value)
	return clone
}

// Without returns a copy with field unset.
func (s Selection) Without(field Field) Selection {
	clone := s.Clone()
	delete(clone.Facets, field)
	if len(clone.Facets) == 0 {
		clone.Facets = nil
	}
	return clone
}

// WithSearch returns a copy with the search text replaced.
func (s Selection) WithSearch(text string) Selection {
	clone := s.Clone()
	clone.Search = strings.TrimSpace(text)
	return clone
}

// Equal reports whether two selections filter identically.
func (s Selection) Equal(other Selection) bool {
	return s.Search == other.Search && maps.Equal(s.Facets, other.Facets)
}

// # Ordering

// Order is the sort applied to a page query. The zero value sorts by id ascending.
// Stores always append id ascending as a final tie-breaker.
type Order struct {
	Field Field
	Desc  bool
}

func (o Order) field() Field {
	if o.Field == "" {
		return FieldID
	}
	return o.Field
}
