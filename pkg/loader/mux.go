package loader

import (
	"context"
	"maps"
	"slices"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/feature"
)

// Mux dispatches a location to the loader registered for its scheme.
// Locations without a scheme go to the fallback loader.
type Mux struct {
	loaders  map[string]feature.ModuleLoader
	fallback feature.ModuleLoader
	logger   contracts.Logger
}

var _ feature.ModuleLoader = (*Mux)(nil)

func NewMux(l contracts.Logger) *Mux {
	return &Mux{loaders: make(map[string]feature.ModuleLoader), logger: l}
}

func (m *Mux) Handle(scheme string, l feature.ModuleLoader) *Mux {
	m.loaders[scheme] = l
	return m
}

func (m *Mux) Fallback(l feature.ModuleLoader) *Mux {
	m.fallback = l
	return m
}

func (m *Mux) Schemes() []string {
	return slices.Sorted(maps.Keys(m.loaders))
}

func (m *Mux) Load(ctx context.Context, location string) (any, error) {
	scheme, _ := splitLocation(location)

	l, ok := m.loaders[scheme]
	if !ok && scheme == "" {
		l, ok = m.fallback, m.fallback != nil
	}
	if !ok {
		return nil, ErrUnsupportedScheme.WithDetail("scheme", scheme).WithDetail("location", location)
	}

	if m.logger != nil {
		m.logger.Trace("loading feature app module", "location", location, "scheme", scheme)
	}
	return l.Load(ctx, location)
}
