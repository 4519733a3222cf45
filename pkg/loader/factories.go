package loader

import (
	"maps"
	"slices"
	"sync"

	"github.com/shuldan/featurehub/pkg/feature"
)

type AppFactory func(env feature.Environment) (any, error)

type ServiceFactory func(env feature.ServiceEnvironment) (feature.SharedService, error)

// Factories maps the factory names used in manifests to host code.
type Factories struct {
	mu       sync.RWMutex
	apps     map[string]AppFactory
	services map[string]ServiceFactory
}

func NewFactories() *Factories {
	return &Factories{
		apps:     make(map[string]AppFactory),
		services: make(map[string]ServiceFactory),
	}
}

func (f *Factories) RegisterApp(name string, factory AppFactory) error {
	if name == "" || factory == nil {
		return ErrInvalidManifest.WithDetail("reason", "app factory needs a name and a function")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.apps[name]; exists {
		return ErrFactoryExists.WithDetail("kind", "app").WithDetail("name", name)
	}
	f.apps[name] = factory
	return nil
}

func (f *Factories) RegisterService(name string, factory ServiceFactory) error {
	if name == "" || factory == nil {
		return ErrInvalidManifest.WithDetail("reason", "service factory needs a name and a function")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.services[name]; exists {
		return ErrFactoryExists.WithDetail("kind", "service").WithDetail("name", name)
	}
	f.services[name] = factory
	return nil
}

func (f *Factories) MustRegisterApp(name string, factory AppFactory) {
	if err := f.RegisterApp(name, factory); err != nil {
		panic(err)
	}
}

func (f *Factories) MustRegisterService(name string, factory ServiceFactory) {
	if err := f.RegisterService(name, factory); err != nil {
		panic(err)
	}
}

func (f *Factories) app(name string) (AppFactory, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.apps[name]
	if !ok {
		return nil, ErrUnknownFactory.WithDetail("kind", "app").WithDetail("name", name)
	}
	return factory, nil
}

func (f *Factories) service(name string) (ServiceFactory, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.services[name]
	if !ok {
		return nil, ErrUnknownFactory.WithDetail("kind", "service").WithDetail("name", name)
	}
	return factory, nil
}

// Apps lists the registered app factory names.
func (f *Factories) Apps() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.apps))
}

// Services lists the registered service factory names.
func (f *Factories) Services() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.services))
}
