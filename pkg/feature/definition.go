package feature

// Dependencies maps names to semver ranges ("^1.0.0").
type Dependencies struct {
	// Services are feature services resolved by the ServiceRegistry.
	Services map[string]string `yaml:"services,omitempty" json:"services,omitempty"`
	// Externals are shared libraries checked by the ExternalsValidator.
	Externals map[string]string `yaml:"externals,omitempty" json:"externals,omitempty"`
}

// Definition describes a feature app. A *Definition is compared by
// identity: two definitions with the same ID are still distinct modules.
type Definition struct {
	ID string

	Dependencies Dependencies

	// OptionalDependencies are bound when available and skipped otherwise.
	OptionalDependencies Dependencies

	// OwnServices are contributed to the shared registry, attributed to ID,
	// before the first instance of this definition is created.
	OwnServices []*ServiceProvider

	Create func(env Environment) (any, error)
}

// Environment is the input of Definition.Create.
type Environment struct {
	// Config is the integrator config for the definition ID, shared by all
	// instances with that ID.
	Config any
	// InstanceConfig is specific to one GetScope call.
	InstanceConfig any
	// Services holds the bound feature services keyed by service ID.
	Services map[string]any
	// IDSpecifier distinguishes sibling instances; empty means none.
	IDSpecifier string
}

// ScopeOptions select and configure one instance in GetScope.
type ScopeOptions struct {
	IDSpecifier    string
	InstanceConfig any
}

// DefinitionProvider is implemented by loaded module payloads that carry a
// definition rather than being one.
type DefinitionProvider interface {
	FeatureAppDefinition() *Definition
}

// ServiceProvider contributes one feature service to the registry.
type ServiceProvider struct {
	ID string

	Dependencies         Dependencies
	OptionalDependencies Dependencies

	Create func(env ServiceEnvironment) (SharedService, error)
}

type ServiceEnvironment struct {
	Config   any
	Services map[string]any
}

// SharedService maps a semver version to the binder for that version.
type SharedService map[string]ServiceBinder

// ServiceBinder hands out the service to one consumer, identified by its
// UID. Unbind, when set, is called exactly once when the consumer goes away.
type ServiceBinder func(consumerUID string) ServiceBinding

type ServiceBinding struct {
	Service any
	Unbind  func()
}

// ServicesBinding is the bound capability set of one consumer.
type ServicesBinding struct {
	Services map[string]any
	Unbind   func() error
}

// UID is the identity key of a scope.
func UID(id, idSpecifier string) string {
	if idSpecifier == "" {
		return id
	}
	return id + ":" + idSpecifier
}
