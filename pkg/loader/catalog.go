package loader

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/shuldan/featurehub/pkg/feature"
)

// Catalog serves modules compiled into the host binary.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]any
}

var _ feature.ModuleLoader = (*Catalog)(nil)

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]any)}
}

// Register stores payload under location. payload is anything the manager
// accepts as a module: a *feature.Definition, a DefinitionProvider or a
// func() *feature.Definition.
func (c *Catalog) Register(location string, payload any) error {
	if location == "" {
		return ErrInvalidLocation.WithDetail("location", location).WithDetail("reason", "empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[location]; exists {
		return ErrLocationExists.WithDetail("location", location)
	}
	c.entries[location] = payload
	return nil
}

func (c *Catalog) MustRegister(location string, payload any) {
	if err := c.Register(location, payload); err != nil {
		panic(err)
	}
}

func (c *Catalog) Load(ctx context.Context, location string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	payload, ok := c.entries[location]
	if !ok {
		return nil, ErrModuleNotFound.WithDetail("location", location)
	}
	return payload, nil
}

func (c *Catalog) Locations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}
