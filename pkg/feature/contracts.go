package feature

import "context"

// ModuleLoader fetches the payload stored at a location. The Manager calls
// it at most once per location.
type ModuleLoader interface {
	Load(ctx context.Context, location string) (any, error)
}

type LoaderFunc func(ctx context.Context, location string) (any, error)

func (f LoaderFunc) Load(ctx context.Context, location string) (any, error) {
	return f(ctx, location)
}

// ServiceRegistry resolves declared service dependencies. RegisterServices
// must tolerate distinct owners declaring the same service ID.
type ServiceRegistry interface {
	RegisterServices(providers []*ServiceProvider, ownerID string) error
	BindServices(consumer *Definition, idSpecifier string) (*ServicesBinding, error)
}

// ExternalsValidator checks required shared libraries against the ones the
// integrator provides.
type ExternalsValidator interface {
	Validate(required map[string]string) error
}
