package schema

// CatalogItemTable represents the 'catalog_item' table
type CatalogItemTable struct {
	Table           string
	ID              string
	Name            string
	Category        string
	ElementaryGroup string
	Family          string
	Job             string
	Project         string
}

// CatalogItem is the schema definition for catalog_item
var CatalogItem = CatalogItemTable{
	Table:           "catalog_item",
	ID:              "id",
	Name:            "name",
	Category:        "category",
	ElementaryGroup: "elementary_group",
	Family:          "family",
	Job:             "job",
	Project:         "project",
}
