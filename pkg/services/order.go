package services

import (
	"maps"
	"slices"
	"strings"

	"github.com/shuldan/featurehub/pkg/feature"
)

// sortProviders orders providers so that each comes after the in-batch
// providers it depends on. Input order is kept otherwise.
func sortProviders(providers []*feature.ServiceProvider, ownerID string) ([]*feature.ServiceProvider, error) {
	byID := make(map[string]*feature.ServiceProvider, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(byID))
	ordered := make([]*feature.ServiceProvider, 0, len(byID))
	var path []string

	var visit func(p *feature.ServiceProvider) error
	visit = func(p *feature.ServiceProvider) error {
		switch state[p.ID] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, p.ID)
			chain := append(slices.Clone(path[start:]), p.ID)
			return ErrCircularDependency.
				WithDetail("owner", ownerID).
				WithDetail("chain", strings.Join(chain, " -> "))
		}

		state[p.ID] = visiting
		path = append(path, p.ID)

		for _, id := range providerDependencies(p) {
			if dep, ok := byID[id]; ok {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[p.ID] = done
		ordered = append(ordered, p)
		return nil
	}

	for _, p := range providers {
		if p == nil || byID[p.ID] != p {
			continue
		}
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func providerDependencies(p *feature.ServiceProvider) []string {
	ids := slices.Collect(maps.Keys(p.Dependencies.Services))
	ids = append(ids, slices.Collect(maps.Keys(p.OptionalDependencies.Services))...)
	slices.Sort(ids)
	return slices.Compact(ids)
}
