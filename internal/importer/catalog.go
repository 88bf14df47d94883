package importer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"fabricstore/internal/domain"
)

// Catalog is an in-memory product lookup filled by CSVImporter.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: map[string]domain.Product{}}
}

func (c *Catalog) Upsert(_ context.Context, p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	return nil
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// List returns products ordered by id.
func (c *Catalog) List() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadCatalogFile imports the CSV at path into a new Catalog.
func LoadCatalogFile(ctx context.Context, path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := NewCatalog()
	if _, err := NewCSVImporter(f, c).Run(ctx); err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return c, nil
}
