package services

import "github.com/shuldan/featurehub/pkg/contracts"

type Option func(*Registry)

// WithConfigs sets the per-service configs, keyed by service ID.
func WithConfigs(configs map[string]any) Option {
	return func(r *Registry) {
		if configs != nil {
			r.configs = configs
		}
	}
}

func WithLogger(l contracts.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}
