package feature

import (
	"context"
	"sync"

	"github.com/shuldan/featurehub/pkg/contracts"
)

// resolver coalesces loads by location: one AsyncValue per location, stored
// before the load settles and kept forever, failures included.
type resolver struct {
	loader  ModuleLoader
	ctx     context.Context
	logger  contracts.Logger
	publish func(event any)

	mu      sync.Mutex
	pending map[string]*AsyncValue[*Definition]
	wg      sync.WaitGroup
}

func newResolver(loader ModuleLoader, ctx context.Context, logger contracts.Logger, publish func(any)) *resolver {
	return &resolver{
		loader:  loader,
		ctx:     ctx,
		logger:  logger,
		publish: publish,
		pending: make(map[string]*AsyncValue[*Definition]),
	}
}

func (r *resolver) resolve(location string) *AsyncValue[*Definition] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.pending[location]; ok {
		return handle
	}

	handle := newAsyncValue[*Definition]()
	r.pending[location] = handle

	r.wg.Add(1)
	go r.load(location, handle)

	return handle
}

func (r *resolver) load(location string, handle *AsyncValue[*Definition]) {
	defer r.wg.Done()

	definition, err := r.fetch(location)
	if err != nil {
		handle.settle(nil, err)
		return
	}

	r.logger.Info("the feature app module has been successfully loaded",
		"location", location, "feature_app", definition.ID)
	r.publish(DefinitionLoaded{Location: location, ID: definition.ID})

	handle.settle(definition, nil)
}

func (r *resolver) fetch(location string) (definition *Definition, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			definition = nil
			err = ErrModuleLoad.
				WithDetail("location", location).
				WithDetail("panic", rec)
		}
	}()

	payload, err := r.loader.Load(r.ctx, location)
	if err != nil {
		return nil, ErrModuleLoad.
			WithDetail("location", location).
			WithCause(err)
	}

	return definitionFromPayload(location, payload)
}

func (r *resolver) wait() {
	r.wg.Wait()
}

// definitionFromPayload is the one place a loaded payload is checked; past
// it every caller holds a *Definition with an ID and a Create func.
func definitionFromPayload(location string, payload any) (*Definition, error) {
	var definition *Definition

	switch p := payload.(type) {
	case *Definition:
		definition = p
	case Definition:
		definition = &p
	case DefinitionProvider:
		definition = p.FeatureAppDefinition()
	case func() *Definition:
		definition = p()
	default:
		return nil, ErrInvalidModule.
			WithDetail("location", location).
			WithDetail("reason", "a feature app module must provide a feature app definition")
	}

	if reason := validateDefinition(definition); reason != "" {
		return nil, ErrInvalidModule.
			WithDetail("location", location).
			WithDetail("reason", reason)
	}

	return definition, nil
}

func validateDefinition(definition *Definition) string {
	switch {
	case definition == nil:
		return "the feature app definition is nil"
	case definition.ID == "":
		return "the feature app definition has no id"
	case definition.Create == nil:
		return "the feature app definition has no create function"
	}
	return ""
}
