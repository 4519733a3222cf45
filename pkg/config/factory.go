package config

import (
	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/errors"
)

var _ Loader = (*envConfigLoader)(nil)
var _ Loader = (*yamlConfigLoader)(nil)
var _ Loader = (*chainLoader)(nil)

func NewEnvConfigLoader(prefix string) Loader {
	return &envConfigLoader{prefix: prefix}
}

// NewYamlConfigLoader reads the first existing path. JSON files are valid
// YAML and load the same way.
func NewYamlConfigLoader(paths ...string) Loader {
	return &yamlConfigLoader{paths: paths}
}

func NewChainLoader(loaders ...Loader) Loader {
	return &chainLoader{layers: loaders}
}

func NewMapConfig(values map[string]any) contracts.Config {
	if values == nil {
		values = map[string]any{}
	}
	return &MapConfig{values: values}
}

// Load builds the host configuration: the first readable file of paths,
// overlaid by environment variables with envPrefix, with {{ env "X" }} and
// {{ file "/run/secrets/x" }} templates rendered.
func Load(envPrefix string, paths ...string) (contracts.Config, error) {
	loader := newTemplatedLoader(NewChainLoader(
		NewYamlConfigLoader(paths...),
		NewEnvConfigLoader(envPrefix),
	))

	values, err := loader.Load()
	if errors.Is(err, ErrNoConfigSource) {
		values, err = map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return NewMapConfig(values), nil
}
