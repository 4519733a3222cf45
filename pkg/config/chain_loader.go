package config

import "github.com/shuldan/featurehub/pkg/errors"

// chainLoader overlays its layers in order: later layers win key by key and
// nested sections merge. A layer reporting ErrNoConfigSource is skipped;
// any other layer error fails the chain, so a malformed file is never
// silently replaced by the environment.
type chainLoader struct {
	layers []Loader
}

func (c *chainLoader) Load() (map[string]any, error) {
	merged := make(map[string]any)
	var missing []error

	for _, layer := range c.layers {
		values, err := layer.Load()
		if errors.Is(err, ErrNoConfigSource) {
			missing = append(missing, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		overlay(merged, values)
	}

	if len(merged) == 0 {
		return nil, ErrNoConfigSource.WithDetail("loader", "chain").WithCause(errors.Join(missing...))
	}
	return merged, nil
}

// overlay copies src into dst. Maps taken from src are cloned, so later
// overlays never write into a layer's own values.
func overlay(dst, src map[string]any) {
	for k, v := range src {
		section, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		target, ok := dst[k].(map[string]any)
		if !ok {
			target = make(map[string]any, len(section))
			dst[k] = target
		}
		overlay(target, section)
	}
}
