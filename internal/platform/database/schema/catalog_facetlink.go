package schema

// CatalogFacetLinkTable represents the 'catalog_facet_link' table.
// Each row maps one parent facet value to one child facet value.
type CatalogFacetLinkTable struct {
	Table       string
	ParentField string
	ParentValue string
	ChildField  string
	ChildValue  string
}

// CatalogFacetLink is the schema definition for catalog_facet_link
var CatalogFacetLink = CatalogFacetLinkTable{
	Table:       "catalog_facet_link",
	ParentField: "parent_field",
	ParentValue: "parent_value",
	ChildField:  "child_field",
	ChildValue:  "child_value",
}
