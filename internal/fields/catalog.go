package fields

import (
	"strings"
	"sync"
)

// Catalog is the in-memory owning structure for areas and products.
// It is the source of truth for every local and remote write; mutations
// arrive from concurrent HTTP handlers, so access is serialized here.
type Catalog struct {
	mu       sync.RWMutex
	areas    []Area
	products []Product
}

// NewCatalog creates a catalog seeded with previously persisted state
func NewCatalog(areas []Area, products []Product) *Catalog {
	return &Catalog{
		areas:    append([]Area(nil), areas...),
		products: append([]Product(nil), products...),
	}
}

// Areas returns a copy of all areas
func (c *Catalog) Areas() []Area {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Area(nil), c.areas...)
}

// Products returns a copy of all products
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Product(nil), c.products...)
}

// Snapshot returns copies of both collections in one lock acquisition
func (c *Catalog) Snapshot() ([]Area, []Product) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Area(nil), c.areas...), append([]Product(nil), c.products...)
}

// AreaByID looks up an area
func (c *Catalog) AreaByID(id string) (Area, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// ProductByID looks up a product
func (c *Catalog) ProductByID(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsForArea returns all products applied to one area
func (c *Catalog) ProductsForArea(areaID string) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Product
	for _, p := range c.products {
		if p.AreaID == areaID {
			out = append(out, p)
		}
	}
	return out
}

// OwnerOf resolves the owner partition key for an area
func (c *Catalog) OwnerOf(areaID string) (string, bool) {
	a, ok := c.AreaByID(areaID)
	if !ok {
		return "", false
	}
	return a.Owner, true
}

// AddArea appends a new area
func (c *Catalog) AddArea(a Area) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.areas = append(c.areas, a)
}

// UpdateArea replaces an existing area in place
func (c *Catalog) UpdateArea(a Area) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.areas {
		if c.areas[i].ID == a.ID {
			c.areas[i] = a
			return true
		}
	}
	return false
}

// RemoveArea deletes an area and cascades to its products. It returns
// the removed area and the orphaned products so the caller can issue
// the matching remote deletes.
func (c *Catalog) RemoveArea(id string) (Area, []Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed Area
	found := false
	kept := c.areas[:0]
	for _, a := range c.areas {
		if a.ID == id {
			removed = a
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return Area{}, nil, false
	}
	c.areas = kept

	var cascaded []Product
	keptProducts := c.products[:0]
	for _, p := range c.products {
		if p.AreaID == id {
			cascaded = append(cascaded, p)
			continue
		}
		keptProducts = append(keptProducts, p)
	}
	c.products = keptProducts

	return removed, cascaded, true
}

// AddProducts appends a batch of products
func (c *Catalog) AddProducts(ps []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, ps...)
}

// UpdateProduct replaces an existing product in place
func (c *Catalog) UpdateProduct(p Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == p.ID {
			c.products[i] = p
			return true
		}
	}
	return false
}

// RemoveProduct deletes one product
func (c *Catalog) RemoveProduct(id string) (Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.products {
		if p.ID == id {
			c.products = append(c.products[:i], c.products[i+1:]...)
			return p, true
		}
	}
	return Product{}, false
}

// ReplaceAll swaps in a complete new state. Used by the startup pull
// when remote data wins over local.
func (c *Catalog) ReplaceAll(areas []Area, products []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.areas = append([]Area(nil), areas...)
	c.products = append([]Product(nil), products...)
}

// Search filters areas by name or by any of their products' name or
// type, case-insensitively. An empty query returns everything.
func (c *Catalog) Search(query string) []Area {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Areas()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	byArea := make(map[string][]Product, len(c.areas))
	for _, p := range c.products {
		byArea[p.AreaID] = append(byArea[p.AreaID], p)
	}

	var out []Area
	for _, a := range c.areas {
		if strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
			continue
		}
		for _, p := range byArea[a.ID] {
			if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Type), q) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Stats returns the area count and summed hectares
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{TotalAreas: len(c.areas)}
	for _, a := range c.areas {
		s.TotalHectares += a.Area
	}
	return s
}
