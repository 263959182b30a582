package catalog

// Compile turns a resolved selection into a single predicate.
//
// The search text matches any search field. Each concrete facet with a value
// adds an exact match. A dependent facet left unset while its parent is set is
// restricted to the values the dependency map allows for that parent. Virtual
// facets never reach the predicate directly; they act only through their
// children. With nothing selected the result is [All].
func Compile(schema Schema, resolution *Resolution) Predicate {
	var terms []Predicate
	selection := resolution.Selection

	if selection.Search != "" {
		search := make([]Predicate, 0, len(schema.SearchFields))
		for _, field := range schema.SearchFields {
			search = append(search, Contains(field, selection.Search))
		}
		terms = append(terms, Or(search...))
	}

	for _, facet := range schema.Facets {
		if facet.IsVirtual() {
			continue
		}

		if value := selection.Value(facet.Field); value != "" {
			terms = append(terms, Eq(facet.Field, value))
			continue
		}

		if facet.Parent != "" && selection.IsSet(facet.Parent) {
			terms = append(terms, In(facet.Field, resolution.Allowed[facet.Field]))
		}
	}

	return And(terms...)
}
