package services

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/errors"
	"github.com/shuldan/featurehub/pkg/feature"
	"github.com/shuldan/featurehub/pkg/logger"
)

// Registry holds the feature services contributed by feature apps and binds
// them to consumers by semver range. Provider factories and binders run
// under the registry lock and must not call back into it.
type Registry struct {
	mu       sync.Mutex
	configs  map[string]any
	logger   contracts.Logger
	services map[string]*registeredService
	bound    map[string]struct{}
}

type registeredService struct {
	id       string
	ownerID  string
	versions []*versionedBinder
	refs     int
}

type versionedBinder struct {
	version *semver.Version
	binder  feature.ServiceBinder
}

var _ feature.ServiceRegistry = (*Registry)(nil)

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		configs:  map[string]any{},
		services: make(map[string]*registeredService),
		bound:    make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger, _ = logger.NewLogger()
	}

	return r
}

// RegisterServices creates and stores the given providers on behalf of
// ownerID. Providers depending on one another within the batch are created
// in dependency order. A provider whose ID is already registered is skipped.
func (r *Registry) RegisterServices(providers []*feature.ServiceProvider, ownerID string) error {
	ordered, err := sortProviders(providers, ownerID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, provider := range ordered {
		if existing, ok := r.services[provider.ID]; ok {
			r.logger.Warn("the feature service has already been registered",
				"service", provider.ID, "owner", ownerID, "registered_by", existing.ownerID)
			continue
		}
		if err := r.register(provider, ownerID); err != nil {
			return err
		}
	}

	return nil
}

// BindServices binds every service consumer depends on, under the consumer
// UID. Nothing stays bound when a required service cannot be bound.
func (r *Registry) BindServices(consumer *feature.Definition, idSpecifier string) (*feature.ServicesBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, _, err := r.bind(
		feature.UID(consumer.ID, idSpecifier),
		consumer.Dependencies.Services,
		consumer.OptionalDependencies.Services,
	)
	return binding, err
}

// Registered reports whether a service with id has been registered.
func (r *Registry) Registered(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.services[id]
	return ok
}

// Refs returns the number of consumers currently bound to the service.
func (r *Registry) Refs(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.services[id]; ok {
		return svc.refs
	}
	return 0
}

// Versions lists the registered versions of the service, highest first.
func (r *Registry) Versions(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	if !ok {
		return nil
	}
	return svc.available()
}

func (r *Registry) register(provider *feature.ServiceProvider, ownerID string) error {
	binding, held, err := r.bind(provider.ID, provider.Dependencies.Services, provider.OptionalDependencies.Services)
	if err != nil {
		return err
	}

	shared, err := createService(provider, feature.ServiceEnvironment{
		Config:   r.configs[provider.ID],
		Services: binding.Services,
	})
	if err == nil {
		var versions []*versionedBinder
		if versions, err = parseVersions(provider.ID, shared); err == nil {
			r.services[provider.ID] = &registeredService{
				id:       provider.ID,
				ownerID:  ownerID,
				versions: versions,
			}
			r.logger.Info("the feature service has been registered",
				"service", provider.ID, "owner", ownerID, "versions", r.services[provider.ID].available())
			return nil
		}
	}

	delete(r.bound, provider.ID)
	if releaseErr := r.release(held); releaseErr != nil {
		err = errors.Join(err, releaseErr)
	}
	return err
}

// bind must be called with r.mu held. The returned Unbind locks r.mu.
func (r *Registry) bind(consumerUID string, required, optional map[string]string) (*feature.ServicesBinding, []heldBinding, error) {
	if _, ok := r.bound[consumerUID]; ok {
		return nil, nil, ErrAlreadyBound.WithDetail("consumer", consumerUID)
	}

	var (
		services = make(map[string]any, len(required)+len(optional))
		held     []heldBinding
	)

	fail := func(err error) (*feature.ServicesBinding, []heldBinding, error) {
		if releaseErr := r.release(held); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return nil, nil, err
	}

	for _, dep := range dependencyList(required, optional) {
		svc, binder, err := r.match(consumerUID, dep)
		if err != nil {
			return fail(err)
		}
		if binder == nil {
			continue
		}

		binding, err := callBinder(binder.binder, consumerUID)
		if err != nil {
			return fail(ErrServiceBind.WithDetail("id", dep.id).WithDetail("consumer", consumerUID).WithCause(err))
		}

		svc.refs++
		services[dep.id] = binding.Service
		held = append(held, heldBinding{service: svc, unbind: binding.Unbind})
	}

	r.bound[consumerUID] = struct{}{}

	var once sync.Once
	unbind := func() error {
		err := error(ErrAlreadyUnbound.WithDetail("consumer", consumerUID))
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.bound, consumerUID)
			err = r.release(held)
		})
		return err
	}

	return &feature.ServicesBinding{Services: services, Unbind: unbind}, held, nil
}

// match finds the highest registered version satisfying dep. A nil binder
// with a nil error means an optional dependency that is left out.
func (r *Registry) match(consumerUID string, dep dependency) (*registeredService, *versionedBinder, error) {
	svc, ok := r.services[dep.id]
	if !ok {
		if dep.optional {
			r.logger.Info("the optional feature service is not registered",
				"service", dep.id, "consumer", consumerUID)
			return nil, nil, nil
		}
		return nil, nil, ErrServiceNotRegistered.WithDetail("id", dep.id).WithDetail("consumer", consumerUID)
	}

	constraint, err := semver.NewConstraint(dep.versionRange)
	if err != nil {
		return nil, nil, ErrInvalidRange.
			WithDetail("id", dep.id).
			WithDetail("consumer", consumerUID).
			WithDetail("range", dep.versionRange).
			WithCause(err)
	}

	for _, candidate := range svc.versions {
		if constraint.Check(candidate.version) {
			return svc, candidate, nil
		}
	}

	if dep.optional {
		r.logger.Info("the optional feature service is not available in a compatible version",
			"service", dep.id, "consumer", consumerUID, "range", dep.versionRange)
		return nil, nil, nil
	}
	return nil, nil, ErrServiceIncompatible.
		WithDetail("id", dep.id).
		WithDetail("consumer", consumerUID).
		WithDetail("range", dep.versionRange).
		WithDetail("available", strings.Join(svc.available(), ", "))
}

type heldBinding struct {
	service *registeredService
	unbind  func()
}

// release runs held unbinds in reverse order. Callers hold r.mu.
func (r *Registry) release(held []heldBinding) error {
	var errs []error
	for i := len(held) - 1; i >= 0; i-- {
		h := held[i]
		h.service.refs--
		if err := callUnbind(h.unbind); err != nil {
			errs = append(errs, fmt.Errorf("feature service %s: %w", h.service.id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *registeredService) available() []string {
	out := make([]string, 0, len(s.versions))
	for _, v := range s.versions {
		out = append(out, v.version.Original())
	}
	return out
}

type dependency struct {
	id           string
	versionRange string
	optional     bool
}

// dependencyList orders required dependencies before optional ones, each
// sorted by id. A service listed in both is treated as required.
func dependencyList(required, optional map[string]string) []dependency {
	deps := make([]dependency, 0, len(required)+len(optional))
	for _, id := range slices.Sorted(maps.Keys(required)) {
		deps = append(deps, dependency{id: id, versionRange: required[id]})
	}
	for _, id := range slices.Sorted(maps.Keys(optional)) {
		if _, ok := required[id]; ok {
			continue
		}
		deps = append(deps, dependency{id: id, versionRange: optional[id], optional: true})
	}
	return deps
}

func parseVersions(id string, shared feature.SharedService) ([]*versionedBinder, error) {
	if len(shared) == 0 {
		return nil, ErrServiceCreate.WithDetail("id", id).WithCause(fmt.Errorf("no versions provided"))
	}

	versions := make([]*versionedBinder, 0, len(shared))
	for raw, binder := range shared {
		version, err := semver.StrictNewVersion(raw)
		if err != nil {
			return nil, ErrInvalidVersion.WithDetail("id", id).WithDetail("version", raw).WithCause(err)
		}
		if binder == nil {
			return nil, ErrServiceCreate.WithDetail("id", id).WithCause(fmt.Errorf("version %s has no binder", raw))
		}
		versions = append(versions, &versionedBinder{version: version, binder: binder})
	}

	slices.SortFunc(versions, func(a, b *versionedBinder) int {
		return b.version.Compare(a.version)
	})
	return versions, nil
}

func createService(provider *feature.ServiceProvider, env feature.ServiceEnvironment) (shared feature.SharedService, err error) {
	if provider.Create == nil {
		return nil, ErrServiceCreate.WithDetail("id", provider.ID).WithCause(fmt.Errorf("no create function"))
	}

	defer func() {
		if rec := recover(); rec != nil {
			shared = nil
			err = ErrServiceCreate.WithDetail("id", provider.ID).WithCause(fmt.Errorf("create panicked: %v", rec))
		}
	}()

	shared, err = provider.Create(env)
	if err != nil {
		return nil, ErrServiceCreate.WithDetail("id", provider.ID).WithCause(err)
	}
	return shared, nil
}

func callBinder(binder feature.ServiceBinder, consumerUID string) (binding feature.ServiceBinding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("binder panicked: %v", rec)
		}
	}()
	return binder(consumerUID), nil
}

func callUnbind(fn func()) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unbind panicked: %v", rec)
		}
	}()
	fn()
	return nil
}
