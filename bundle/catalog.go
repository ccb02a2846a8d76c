package bundle

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Catalog is a registry of bundle definitions keyed by Key.
type Catalog struct {
	mu   sync.RWMutex
	defs map[Key]Definition
}

// NewCatalog returns a catalog holding defs. It fails on the first invalid
// or duplicate definition.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[Key]Definition, len(defs))}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Standard returns a catalog with the day, week, month and year bundles.
func Standard() *Catalog {
	c, err := NewCatalog(Day, Week, Month, Year)
	if err != nil {
		panic(err)
	}
	return c
}

// Register validates d and adds it to the catalog.
func (c *Catalog) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.defs == nil {
		c.defs = make(map[Key]Definition)
	}
	if _, exists := c.defs[d.ID]; exists {
		return fmt.Errorf("bundle %q: %w", d.ID, ErrDuplicateKey)
	}
	c.defs[d.ID] = d
	return nil
}

// Get returns the definition registered under key.
func (c *Catalog) Get(key Key) (Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.defs[key]
	if !ok {
		return Definition{}, fmt.Errorf("bundle %q: %w", key, ErrNotFound)
	}
	return d, nil
}

// List returns all definitions ordered by key.
func (c *Catalog) List() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// Validate re-checks every definition and joins all failures.
func (c *Catalog) Validate() error {
	var errs []error
	for _, d := range c.List() {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
