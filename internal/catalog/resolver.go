// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"slices"
)

// Resolution is the outcome of resolving a selection against the catalog.
type Resolution struct {
	// Selection is the input with every stale facet value cleared.
	Selection Selection

	// Options lists the legal values of each facet, sorted. [AllValues] is implicit.
	Options map[Field][]string

	// Allowed holds, for a dependent facet whose parent is set, the child values
	// the dependency map reaches from the parent's value.
	Allowed map[Field][]string

	// Reset names the facets whose value was cleared, in schema order.
	Reset []Field
}

// FacetOptions is the public view of one resolved facet.
type FacetOptions struct {
	Field    Field    `json:"field"`
	Label    string   `json:"label"`
	Parent   Field    `json:"parent,omitempty"`
	Selected string   `json:"selected"`
	Options  []string `json:"options"`
}

// Facets lists every facet of schema with its resolved options.
// An unset facet reports [AllValues] as its selection.
func (r *Resolution) Facets(schema Schema) []FacetOptions {
	views := make([]FacetOptions, 0, len(schema.Facets))
	for _, facet := range schema.Facets {
		selected := r.Selection.Value(facet.Field)
		if selected == "" {
			selected = AllValues
		}

		options := r.Options[facet.Field]
		if options == nil {
			options = []string{}
		}

		views = append(views, FacetOptions{
			Field:    facet.Field,
			Label:    facet.Label,
			Parent:   facet.Parent,
			Selected: selected,
			Options:  options,
		})
	}
	return views
}

// Resolver computes facet options and clears selections that fell outside them.
type Resolver struct {
	schema      Schema
	repo        Repository
	links       DependencyMap
	crossFilter bool
}

// NewResolver creates a resolver.
//
// With crossFilter off, the options of a facet are computed over all records,
// narrowed only by the dependency map. With it on, they are also narrowed by the
// search text and every other selected facet.
func NewResolver(schema Schema, repo Repository, links DependencyMap, crossFilter bool) *Resolver {
	return &Resolver{
		schema:      schema,
		repo:        repo,
		links:       links,
		crossFilter: crossFilter,
	}
}

// Resolve returns the options of every facet for selection, and the selection
// with every value outside its options reset to unset.
//
// Facets are visited parents first, so a parent reset is visible to its children
// within the same pass. In cross-filter mode a reset can widen the options of an
// earlier facet, so passes repeat until nothing changes.
func (r *Resolver) Resolve(ctx context.Context, selection Selection) (*Resolution, error) {
	resolution := &Resolution{Selection: r.known(selection)}

	for pass := 0; pass <= len(r.schema.Facets); pass++ {
		changed, err := r.pass(ctx, resolution)
		if err != nil {
			return nil, err
		}
		if !changed || !r.crossFilter {
			break
		}
	}

	return resolution, nil
}

// known drops facet keys the schema does not declare.
func (r *Resolver) known(selection Selection) Selection {
	clean := selection.Clone()
	for field := range selection.Facets {
		if _, ok := r.schema.Facet(field); !ok {
			clean = clean.Without(field)
		}
	}
	return clean
}

func (r *Resolver) pass(ctx context.Context, resolution *Resolution) (bool, error) {
	resolution.Options = make(map[Field][]string, len(r.schema.Facets))
	resolution.Allowed = make(map[Field][]string)
	changed := false

	for _, facet := range r.schema.Facets {
		options, err := r.options(ctx, facet, resolution)
		if err != nil {
			return false, err
		}
		resolution.Options[facet.Field] = options

		value := resolution.Selection.Value(facet.Field)
		if value == "" {
			continue
		}

		if _, found := slices.BinarySearch(options, value); !found {
			resolution.Selection = resolution.Selection.Without(facet.Field)
			if !slices.Contains(resolution.Reset, facet.Field) {
				resolution.Reset = append(resolution.Reset, facet.Field)
			}
			changed = true
		}
	}

	return changed, nil
}

func (r *Resolver) options(ctx context.Context, facet Facet, resolution *Resolution) ([]string, error) {
	if facet.IsVirtual() {
		return r.parentValues(ctx, facet)
	}

	distinct, err := r.repo.DistinctValues(ctx, facet.Field, r.base(facet, resolution.Selection))
	if err != nil {
		return nil, err
	}

	if facet.Parent == "" || !resolution.Selection.IsSet(facet.Parent) {
		return distinct, nil
	}

	link := Link{Parent: facet.Parent, Child: facet.Field}
	mapped, err := r.links.ChildrenOf(ctx, link, resolution.Selection.Value(facet.Parent))
	if err != nil {
		return nil, err
	}

	mapped = sortedSet(mapped)
	resolution.Allowed[facet.Field] = mapped

	return intersect(distinct, mapped), nil
}

// parentValues lists the values of a virtual facet: every parent value the
// dependency map knows, across all its children.
func (r *Resolver) parentValues(ctx context.Context, facet Facet) ([]string, error) {
	var values []string
	for _, child := range r.schema.Children(facet.Field) {
		parents, err := r.links.ParentValues(ctx, Link{Parent: facet.Field, Child: child.Field})
		if err != nil {
			return nil, err
		}
		values = append(values, parents...)
	}
	return sortedSet(values), nil
}

// base is the predicate distinct values of facet are computed under.
func (r *Resolver) base(facet Facet, selection Selection) Predicate {
	if !r.crossFilter {
		return All()
	}

	var terms []Predicate
	if selection.Search != "" {
		search := make([]Predicate, 0, len(r.schema.SearchFields))
		for _, field := range r.schema.SearchFields {
			search = append(search, Contains(field, selection.Search))
		}
		terms = append(terms, Or(search...))
	}

	for _, other := range r.schema.Facets {
		if other.Field == facet.Field || other.IsVirtual() {
			continue
		}
		if value := selection.Value(other.Field); value != "" {
			terms = append(terms, Eq(other.Field, value))
		}
	}

	return And(terms...)
}

// # Set helpers

func sortedSet(values []string) []string {
	set := slices.Clone(values)
	slices.Sort(set)
	set = slices.Compact(set)
	if set == nil {
		set = []string{}
	}
	return set
}

// intersect returns the sorted values present in both sorted inputs.
func intersect(left, right []string) []string {
	out := []string{}
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i] == right[j]:
			out = append(out, left[i])
			i++
			j++
		case left[i] < right[j]:
			i++
		default:
			j++
		}
	}
	return out
}
