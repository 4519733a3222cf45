package feature

import "github.com/shuldan/featurehub/pkg/errors"

var newFeatureCode = errors.WithPrefix("FEATURE")
var newScopeCode = errors.WithPrefix("FEATURE_SCOPE")

var (
	ErrNoModuleLoader = newFeatureCode().New("no module loader provided")
	ErrModuleLoad     = newFeatureCode().New("the feature app module at {{.location}} could not be loaded")
	ErrInvalidModule  = newFeatureCode().New("the feature app module at {{.location}} is invalid: {{.reason}}")

	ErrRegisterServices  = newScopeCode().New("feature services of {{.id}} could not be registered")
	ErrExternals         = newScopeCode().New("externals required by {{.id}} are not satisfied")
	ErrBindServices      = newScopeCode().New("feature services required by {{.uid}} could not be bound")
	ErrCreate            = newScopeCode().New("the feature app {{.uid}} could not be created")
	ErrScopeDestroyed    = newScopeCode().New("the feature app {{.uid}} could not be destroyed: already destroyed")
	ErrUnbind            = newScopeCode().New("feature services of {{.uid}} could not be unbound")
	ErrInvalidDefinition = newScopeCode().New("invalid feature app definition: {{.reason}}")
)
