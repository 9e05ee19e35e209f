package model

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is a registry of models by name. It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewCatalog creates a catalog holding models.
// It panics if two models share a name.
func NewCatalog(models ...Model) *Catalog {
	c := &Catalog{models: make(map[string]Model, len(models))}
	for _, m := range models {
		if err := c.Register(m); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds m. Names must be unique.
func (c *Catalog) Register(m Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.models[m.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, m.Name())
	}
	c.models[m.Name()] = m
	return nil
}

// Lookup returns the model registered as name.
func (c *Catalog) Lookup(name string) (Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// Models returns every registered model sorted by name.
func (c *Catalog) Models() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
