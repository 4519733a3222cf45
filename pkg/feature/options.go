package feature

import (
	"context"

	"github.com/shuldan/featurehub/pkg/contracts"
)

type Option func(*Manager)

// WithModuleLoader enables AsyncDefinition and Preload.
func WithModuleLoader(loader ModuleLoader) Option {
	return func(m *Manager) {
		m.loader = loader
	}
}

// WithExternalsValidator enables the externals check; without it externals
// are not checked at all.
func WithExternalsValidator(validator ExternalsValidator) Option {
	return func(m *Manager) {
		m.validator = validator
	}
}

// WithConfigs sets the integrator configs keyed by feature app ID.
func WithConfigs(configs map[string]any) Option {
	return func(m *Manager) {
		m.configs = configs
	}
}

func WithLogger(logger contracts.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEventBus publishes DefinitionLoaded, ScopeCreated and ScopeDestroyed.
func WithEventBus(bus contracts.Publisher) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithLoadContext sets the context passed to the module loader. Loads are
// never cancelled by callers, only by this context.
func WithLoadContext(ctx context.Context) Option {
	return func(m *Manager) {
		if ctx != nil {
			m.loadCtx = ctx
		}
	}
}
