// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Op is the kind of a [Predicate] node.
type Op string

const (
	OpAll      Op = "all"      // matches every record
	OpAnd      Op = "and"      // every term matches
	OpOr       Op = "or"       // at least one term matches; no terms matches nothing
	OpEq       Op = "eq"       // exact equality on a field
	OpIn       Op = "in"       // field is one of Values; no values matches nothing
	OpContains Op = "contains" // case-insensitive substring on a field
)

// Predicate is a structured record filter.
//
// It is built by [Compile] from a resolved selection and handed to a
// [Repository] which renders it to its own query language. Values are data,
// never syntax: a name like O'Brien or a search of 50%_off stays literal.
type Predicate struct {
	Op     Op          `json:"op"`
	Field  Field       `json:"field,omitempty"`
	Value  string      `json:"value,omitempty"`
	Values []string    `json:"values,omitempty"`
	Terms  []Predicate `json:"terms,omitempty"`
}

// All matches every record.
func All() Predicate { return Predicate{Op: OpAll} }

// And joins terms. Nested conjunctions are flattened and [All] terms dropped.
func And(terms ...Predicate) Predicate {
	var flat []Predicate
	for _, term := range terms {
		switch term.Op {
		case OpAll:
			continue
		case OpAnd:
			flat = append(flat, term.Terms...)
		default:
			flat = append(flat, term)
		}
	}

	switch len(flat) {
	case 0:
		return All()
	case 1:
		return flat[0]
	}
	return Predicate{Op: OpAnd, Terms: flat}
}

// Or matches when any term matches. An empty disjunction matches nothing.
func Or(terms ...Predicate) Predicate {
	if len(terms) == 1 {
		return terms[0]
	}
	return Predicate{Op: OpOr, Terms: terms}
}

// Eq matches records whose field equals value exactly.
func Eq(field Field, value string) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: value}
}

// In matches records whose field is one of values. The list is sorted and
// deduplicated so equal sets render identically.
func In(field Field, values []string) Predicate {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted == nil {
		sorted = []string{}
	}
	return Predicate{Op: OpIn, Field: field, Values: sorted}
}

// Contains matches records whose field contains text, ignoring case.
func Contains(field Field, text string) Predicate {
	return Predicate{Op: OpContains, Field: field, Value: text}
}

// IsAll reports whether the predicate matches every record.
func (p Predicate) IsAll() bool { return p.Op == OpAll || p.Op == "" }

// Match evaluates the predicate against a record in memory.
//
// Stores that cannot push a predicate down (the in-memory store) use it
// directly; the SQL stores render the same semantics in SQL.
func (p Predicate) Match(record *Record) bool {
	switch p.Op {
	case OpAll, "":
		return true

	case OpAnd:
		for _, term := range p.Terms {
			if !term.Match(record) {
				return false
			}
		}
		return true

	case OpOr:
		for _, term := range p.Terms {
			if term.Match(record) {
				return true
			}
		}
		return false

	case OpEq:
		value, ok := record.Value(p.Field)
		return ok && value == p.Value

	case OpIn:
		value, ok := record.Value(p.Field)
		if !ok {
			return false
		}
		_, found := slices.BinarySearch(p.Values, value)
		return found

	case OpContains:
		value, ok := record.Value(p.Field)
		if !ok {
			return false
		}
		fold := cases.Fold()
		return strings.Contains(fold.String(value), fold.String(p.Value))
	}

	return false
}

// Key returns a canonical text form of the predicate, used as a cache key.
// Two predicates with the same key select the same records.
func (p Predicate) Key() string {
	var builder strings.Builder
	p.writeKey(&builder)
	return builder.String()
}

func (p Predicate) writeKey(builder *strings.Builder) {
	switch p.Op {
	case OpAll, "":
		builder.WriteString("all")

	case OpAnd, OpOr:
		builder.WriteString(string(p.Op))
		builder.WriteByte('(')
		for i, term := range p.Terms {
			if i > 0 {
				builder.WriteByte(',')
			}
			term.writeKey(builder)
		}
		builder.WriteByte(')')

	case OpIn:
		builder.WriteString("in(")
		builder.WriteString(string(p.Field))
		builder.WriteString(":[")
		for i, value := range p.Values {
			if i > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(strconv.Quote(value))
		}
		builder.WriteString("])")

	default:
		builder.WriteString(string(p.Op))
		builder.WriteByte('(')
		builder.WriteString(string(p.Field))
		builder.WriteByte(':')
		builder.WriteString(strconv.Quote(p.Value))
		builder.WriteByte(')')
	}
}

// String implements fmt.Stringer for logging.
func (p Predicate) String() string { return p.Key() }
