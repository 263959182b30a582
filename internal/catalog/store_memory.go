package catalog

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// LinkRow is one (parent value, child value) pair of the dependency map.
type LinkRow struct {
	Link
	ParentValue string
	ChildValue  string
}

// MemoryStore implements [Repository] and [DependencyMap] over an in-process
// snapshot. Predicates are evaluated with [Predicate.Match].
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	links   map[Link]map[string][]string
}

// NewMemoryStore builds a store from records and dependency rows.
// Record ids must be unique.
func NewMemoryStore(records []*Record, rows []LinkRow) (*MemoryStore, error) {
	store := &MemoryStore{links: make(map[Link]map[string][]string)}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.ID == "" {
			return nil, fmt.Errorf("catalog: record with empty id")
		}
		if _, dup := seen[record.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate record id %q", record.ID)
		}
		seen[record.ID] = struct{}{}
		store.records = append(store.records, record.Clone())
	}

	for _, row := range rows {
		children, ok := store.links[row.Link]
		if !ok {
			children = make(map[string][]string)
			store.links[row.Link] = children
		}
		children[row.ParentValue] = append(children[row.ParentValue], row.ChildValue)
	}

	return store, nil
}

func (store *MemoryStore) DistinctValues(ctx context.Context, field Field, predicate Predicate) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var values []string
	for _, record := range store.records {
		if !predicate.Match(record) {
			continue
		}
		if value, ok := record.Value(field); ok {
			values = append(values, value)
		}
	}
	return sortedSet(values), nil
}

func (store *MemoryStore) QueryPage(ctx context.Context, predicate Predicate, order Order, offset, limit int) ([]*Record, int, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var matched []*Record
	for _, record := range store.records {
		if predicate.Match(record) {
			matched = append(matched, record)
		}
	}

	field := order.field()
	slices.SortStableFunc(matched, func(a, b *Record) int {
		left, _ := a.Value(field)
		right, _ := b.Value(field)
		c := cmp.Compare(left, right)
		if order.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	})

	total := len(matched)
	page := []*Record{}
	for i := max(offset, 0); i < total && len(page) < limit; i++ {
		page = append(page, matched[i].Clone())
	}

	return page, total, nil
}

func (store *MemoryStore) ChildrenOf(ctx context.Context, link Link, parentValue string) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return sortedSet(store.links[link][parentValue]), nil
}

func (store *MemoryStore) ParentValues(ctx context.Context, link Link) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var parents []string
	for parent := range store.links[link] {
		parents = append(parents, parent)
	}
	return sortedSet(parents), nil
}

// Len returns the number of records held.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.records)
}

// # YAML seed

// seedFile is the on-disk layout of a catalog seed:
//
//	records:
//	  - {id: INS-001, name: Cimento CP-II, category: Aglomerantes, family: Cimentos}
//	links:
//	  - {parent: collector, child: elementary_group, parent_value: Estrutura, children: [Concreto, Aço]}
type seedFile struct {
	Records []map[string]string `yaml:"records"`
	Links   []seedLink          `yaml:"links"`
}

type seedLink struct {
	Parent      Field    `yaml:"parent"`
	Child       Field    `yaml:"child"`
	ParentValue string   `yaml:"parent_value"`
	Children    []string `yaml:"children"`
}

// LoadSeed decodes a YAML seed into records and dependency rows.
// Empty or null facet values are treated as absent.
func LoadSeed(reader io.Reader, schema Schema) ([]*Record, []LinkRow, error) {
	var seed seedFile
	if err := yaml.NewDecoder(reader).Decode(&seed); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("catalog: decode seed: %w", err)
	}

	records := make([]*Record, 0, len(seed.Records))
	for i, raw := range seed.Records {
		record := &Record{
			ID:     raw[string(FieldID)],
			Name:   raw[string(FieldName)],
			Facets: map[Field]string{},
		}
		for key, value := range raw {
			field := Field(key)
			if field == FieldID || field == FieldName || value == "" {
				continue
			}
			facet, ok := schema.Facet(field)
			if !ok || facet.IsVirtual() {
				return nil, nil, fmt.Errorf("catalog: seed record %d: unknown column %q", i, key)
			}
			record.Facets[field] = value
		}
		records = append(records, record)
	}

	var rows []LinkRow
	for _, link := range seed.Links {
		child, ok := schema.Facet(link.Child)
		if !ok || child.Parent != link.Parent {
			return nil, nil, fmt.Errorf("catalog: seed link %s>%s is not declared", link.Parent, link.Child)
		}
		for _, value := range link.Children {
			rows = append(rows, LinkRow{
				Link:        Link{Parent: link.Parent, Child: link.Child},
				ParentValue: link.ParentValue,
				ChildValue:  value,
			})
		}
	}

	return records, rows, nil
}

// LoadSeedFile reads a YAML seed from path.
func LoadSeedFile(path string, schema Schema) ([]*Record, []LinkRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: open seed: %w", err)
	}
	defer file.Close()

	return LoadSeed(file, schema)
}

// LoadMemoryStore reads a YAML seed file and builds a [MemoryStore].
func LoadMemoryStore(path string, schema Schema) (*MemoryStore, error) {
	records, rows, err := LoadSeedFile(path, schema)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(records, rows)
}
