package catalog

import "context"

// Repository is the read side of the record store.
type Repository interface {
	// DistinctValues returns the sorted, non-null distinct values of field among
	// records matching predicate.
	DistinctValues(ctx context.Context, field Field, predicate Predicate) ([]string, error)

	// QueryPage returns records matching predicate in order, skipping offset and
	// returning at most limit rows, plus the total number of matches regardless
	// of offset and limit. A limit of 0 is legal.
	QueryPage(ctx context.Context, predicate Predicate, order Order, offset, limit int) ([]*Record, int, error)
}

// DependencyMap answers dependency lookups between facets.
type DependencyMap interface {
	// ChildrenOf returns the child values mapped from parentValue.
	ChildrenOf(ctx context.Context, link Link, parentValue string) ([]string, error)

	// ParentValues returns every parent value the link maps from.
	ParentValues(ctx context.Context, link Link) ([]string, error)
}

// ImageStore serves the technical-sheet image of each record.
type ImageStore interface {
	FetchImage(ctx context.Context, id string) (*Image, error)
	ListImages(ctx context.Context) ([]string, error)
	HasImage(ctx context.Context, id string) (bool, error)
}

// Importer loads a seed into a SQL store. Existing records with the same id
// are overwritten; existing link rows are kept.
type Importer interface {
	Import(ctx context.Context, records []*Record, rows []LinkRow) error
}
