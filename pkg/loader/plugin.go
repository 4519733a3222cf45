package loader

import (
	"context"
	"plugin"

	"github.com/shuldan/featurehub/pkg/feature"
)

const DefaultPluginSymbol = "FeatureAppDefinition"

type symbolLookup interface {
	Lookup(symName string) (plugin.Symbol, error)
}

// Plugin loads feature apps from Go plugins (.so files). The location is
// the plugin path, optionally prefixed with "plugin://".
type Plugin struct {
	symbol string
	open   func(path string) (symbolLookup, error)
}

var _ feature.ModuleLoader = (*Plugin)(nil)

type PluginOption func(*Plugin)

// WithSymbol changes the exported symbol looked up in each plugin.
func WithSymbol(name string) PluginOption {
	return func(p *Plugin) {
		if name != "" {
			p.symbol = name
		}
	}
}

func NewPlugin(opts ...PluginOption) *Plugin {
	p := &Plugin{
		symbol: DefaultPluginSymbol,
		open: func(path string) (symbolLookup, error) {
			return plugin.Open(path)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Load(ctx context.Context, location string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := keyOf(location)
	lib, err := p.open(path)
	if err != nil {
		return nil, ErrPluginOpen.WithDetail("path", path).WithCause(err)
	}

	sym, err := lib.Lookup(p.symbol)
	if err != nil {
		return nil, ErrPluginSymbol.WithDetail("path", path).WithDetail("symbol", p.symbol).WithCause(err)
	}

	return derefSymbol(sym), nil
}

// derefSymbol unwraps exported variables, which plugin.Lookup returns as
// pointers to the variable.
func derefSymbol(sym plugin.Symbol) any {
	switch v := sym.(type) {
	case **feature.Definition:
		return *v
	case *func() *feature.Definition:
		return *v
	case *feature.DefinitionProvider:
		return *v
	default:
		return sym
	}
}
