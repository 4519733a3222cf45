package feature

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/errors"
	"github.com/shuldan/featurehub/pkg/logger"
)

// Manager owns the lifecycle of feature apps: it loads definitions once per
// location, creates at most one live scope per UID and destroys scopes
// exactly once.
type Manager struct {
	registry  ServiceRegistry
	loader    ModuleLoader
	validator ExternalsValidator
	configs   map[string]any
	logger    contracts.Logger
	bus       contracts.Publisher
	loadCtx   context.Context

	resolver *resolver

	registerMu sync.Mutex
	registered *identitySet

	mu       sync.Mutex
	scopes   map[string]*Scope
	creating map[string]*pendingScope
	seq      uint64
}

type pendingScope struct {
	done  chan struct{}
	scope *Scope
	err   error
}

// NewManager panics on a nil registry; every other collaborator is optional.
func NewManager(registry ServiceRegistry, opts ...Option) *Manager {
	if registry == nil {
		panic("feature: NewManager called with a nil ServiceRegistry")
	}

	m := &Manager{
		registry:   registry,
		configs:    map[string]any{},
		loadCtx:    context.Background(),
		registered: newIdentitySet(),
		scopes:     make(map[string]*Scope),
		creating:   make(map[string]*pendingScope),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger, _ = logger.NewLogger()
	}

	m.resolver = newResolver(m.loader, m.loadCtx, m.logger, m.publish)

	return m
}

// AsyncDefinition returns the handle for the definition stored at location.
// Every call with the same location returns the same handle; the loader
// runs once and its outcome, failure included, is kept.
func (m *Manager) AsyncDefinition(location string) (*AsyncValue[*Definition], error) {
	if m.loader == nil {
		return nil, ErrNoModuleLoader
	}
	return m.resolver.resolve(location), nil
}

// Preload resolves location and discards the definition. ctx bounds the
// wait, not the load.
func (m *Manager) Preload(ctx context.Context, location string) error {
	handle, err := m.AsyncDefinition(location)
	if err != nil {
		return err
	}
	_, err = handle.Wait(ctx)
	return err
}

// PreloadAll starts every load before waiting and returns the first failure.
func (m *Manager) PreloadAll(ctx context.Context, locations ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, location := range locations {
		g.Go(func() error {
			return m.Preload(gctx, location)
		})
	}
	return g.Wait()
}

// GetScope returns the live scope for (definition.ID, options.IDSpecifier),
// creating it on first request. While a scope is live, repeated calls
// return it without touching the registry again.
func (m *Manager) GetScope(definition *Definition, options ScopeOptions) (*Scope, error) {
	if reason := validateDefinition(definition); reason != "" {
		return nil, ErrInvalidDefinition.WithDetail("reason", reason)
	}

	uid := UID(definition.ID, options.IDSpecifier)

	m.mu.Lock()
	if scope, ok := m.scopes[uid]; ok {
		m.mu.Unlock()
		return scope, nil
	}
	if pending, ok := m.creating[uid]; ok {
		m.mu.Unlock()
		<-pending.done
		return pending.scope, pending.err
	}
	pending := &pendingScope{done: make(chan struct{})}
	m.creating[uid] = pending
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	var (
		scope *Scope
		err   error
	)
	defer func() {
		if scope == nil && err == nil {
			err = ErrCreate.WithDetail("uid", uid).WithDetail("reason", "scope creation panicked")
		}

		m.mu.Lock()
		delete(m.creating, uid)
		if err == nil {
			m.scopes[uid] = scope
		}
		m.mu.Unlock()

		pending.scope, pending.err = scope, err
		close(pending.done)
	}()

	scope, err = m.createScope(definition, uid, seq, options)
	return scope, err
}

// LiveScopes reports how many scopes are currently live.
func (m *Manager) LiveScopes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

// Lookup returns the live scope for uid without creating one.
func (m *Manager) Lookup(uid string) (*Scope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope, ok := m.scopes[uid]
	return scope, ok
}

// Shutdown destroys every live scope, newest first.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	live := make([]*Scope, 0, len(m.scopes))
	for _, scope := range m.scopes {
		live = append(live, scope)
	}
	m.mu.Unlock()

	slices.SortFunc(live, func(a, b *Scope) int {
		return cmp.Compare(b.seq, a.seq)
	})

	var errs []error
	for _, scope := range live {
		if err := scope.Destroy(); err != nil && !errors.Is(err, ErrScopeDestroyed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) createScope(definition *Definition, uid string, seq uint64, options ScopeOptions) (*Scope, error) {
	if err := m.registerOwnServices(definition); err != nil {
		return nil, err
	}

	if err := m.validateExternals(definition); err != nil {
		return nil, err
	}

	binding, err := m.registry.BindServices(definition, options.IDSpecifier)
	if err != nil {
		return nil, ErrBindServices.WithDetail("uid", uid).WithCause(err)
	}
	if binding == nil {
		binding = &ServicesBinding{}
	}

	instance, err := create(definition, Environment{
		Config:         m.configs[definition.ID],
		InstanceConfig: options.InstanceConfig,
		Services:       binding.Services,
		IDSpecifier:    options.IDSpecifier,
	})
	if err != nil {
		err = ErrCreate.WithDetail("uid", uid).WithCause(err)
		if unbindErr := unbind(binding.Unbind); unbindErr != nil {
			err = errors.Join(err, ErrUnbind.WithDetail("uid", uid).WithCause(unbindErr))
		}
		return nil, err
	}

	scope := &Scope{
		id:       uuid.NewString(),
		uid:      uid,
		seq:      seq,
		instance: instance,
		unbind:   binding.Unbind,
		manager:  m,
	}

	m.logger.Info("the feature app has been successfully created", "uid", uid, "scope_id", scope.id)
	m.publish(ScopeCreated{UID: uid, ScopeID: scope.id})

	return scope, nil
}

func (m *Manager) registerOwnServices(definition *Definition) error {
	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	if m.registered.has(definition) {
		return nil
	}

	if len(definition.OwnServices) > 0 {
		if err := m.registry.RegisterServices(definition.OwnServices, definition.ID); err != nil {
			return ErrRegisterServices.WithDetail("id", definition.ID).WithCause(err)
		}
	}

	m.registered.add(definition)
	return nil
}

func (m *Manager) validateExternals(definition *Definition) error {
	if m.validator == nil || len(definition.Dependencies.Externals) == 0 {
		return nil
	}

	if err := m.validator.Validate(definition.Dependencies.Externals); err != nil {
		return ErrExternals.WithDetail("id", definition.ID).WithCause(err)
	}
	return nil
}

// release drops scope from the live table unless the key already belongs
// to another scope.
func (m *Manager) release(scope *Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scopes[scope.uid] == scope {
		delete(m.scopes, scope.uid)
	}
}

func (m *Manager) publish(event any) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(context.Background(), event); err != nil {
		m.logger.Warn("lifecycle event not published", "event", fmt.Sprintf("%T", event), "error", err)
	}
}

func create(definition *Definition, env Environment) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("create panicked: %v", r)
		}
	}()
	return definition.Create(env)
}

func unbind(fn func() error) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unbind panicked: %v", r)
		}
	}()
	return fn()
}
