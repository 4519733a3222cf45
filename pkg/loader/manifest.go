package loader

import (
	"context"

	"github.com/goccy/go-yaml"

	"github.com/shuldan/featurehub/pkg/feature"
)

// Manifest is the declarative form of a feature app. Code is referenced by
// factory name and resolved through Factories. JSON is accepted as YAML.
type Manifest struct {
	ID                   string               `yaml:"id"`
	Factory              string               `yaml:"factory"`
	Dependencies         feature.Dependencies `yaml:"dependencies,omitempty"`
	OptionalDependencies feature.Dependencies `yaml:"optional_dependencies,omitempty"`
	OwnServices          []ServiceManifest    `yaml:"own_services,omitempty"`
}

type ServiceManifest struct {
	ID                   string               `yaml:"id"`
	Factory              string               `yaml:"factory"`
	Dependencies         feature.Dependencies `yaml:"dependencies,omitempty"`
	OptionalDependencies feature.Dependencies `yaml:"optional_dependencies,omitempty"`
}

// ParseManifest decodes and validates a manifest. Unknown fields are
// rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	switch {
	case m.ID == "":
		return ErrInvalidManifest.WithDetail("reason", "id is required")
	case m.Factory == "":
		return ErrInvalidManifest.WithDetail("reason", "factory is required for "+m.ID)
	}

	seen := make(map[string]bool, len(m.OwnServices))
	for _, s := range m.OwnServices {
		switch {
		case s.ID == "":
			return ErrInvalidManifest.WithDetail("reason", "own service of "+m.ID+" has no id")
		case s.Factory == "":
			return ErrInvalidManifest.WithDetail("reason", "own service "+s.ID+" has no factory")
		case seen[s.ID]:
			return ErrInvalidManifest.WithDetail("reason", "own service "+s.ID+" is declared twice")
		}
		seen[s.ID] = true
	}
	return nil
}

// Build resolves the manifest into a new definition.
func (m *Manifest) Build(factories *Factories) (*feature.Definition, error) {
	create, err := factories.app(m.Factory)
	if err != nil {
		return nil, err
	}

	definition := &feature.Definition{
		ID:                   m.ID,
		Dependencies:         m.Dependencies,
		OptionalDependencies: m.OptionalDependencies,
		Create:               create,
	}

	for _, s := range m.OwnServices {
		serviceCreate, err := factories.service(s.Factory)
		if err != nil {
			return nil, err
		}
		definition.OwnServices = append(definition.OwnServices, &feature.ServiceProvider{
			ID:                   s.ID,
			Dependencies:         s.Dependencies,
			OptionalDependencies: s.OptionalDependencies,
			Create:               serviceCreate,
		})
	}

	return definition, nil
}

// Source fetches raw manifest bytes for a location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// ManifestLoader turns manifests fetched from a Source into definitions.
type ManifestLoader struct {
	source    Source
	factories *Factories
}

var _ feature.ModuleLoader = (*ManifestLoader)(nil)

func NewManifestLoader(source Source, factories *Factories) *ManifestLoader {
	return &ManifestLoader{source: source, factories: factories}
}

func (l *ManifestLoader) Load(ctx context.Context, location string) (any, error) {
	manifest, err := l.Manifest(ctx, location)
	if err != nil {
		return nil, err
	}
	return manifest.Build(l.factories)
}

// Manifest fetches and parses the manifest without resolving factories.
func (l *ManifestLoader) Manifest(ctx context.Context, location string) (*Manifest, error) {
	data, err := l.source.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, ErrManifestParse.WithDetail("location", location).WithCause(err)
	}
	return manifest, nil
}
