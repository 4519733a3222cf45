package externals

import "github.com/shuldan/featurehub/pkg/errors"

var newExternalsCode = errors.WithPrefix("EXTERNALS")

var (
	ErrInvalidVersion       = newExternalsCode().New("the provided external {{.name}} has an invalid version {{.version}}")
	ErrExternalNotProvided  = newExternalsCode().New("the external dependency {{.name}} is not provided")
	ErrInvalidRange         = newExternalsCode().New("the external dependency {{.name}} is required with an invalid range {{.range}}")
	ErrExternalIncompatible = newExternalsCode().New("the external dependency {{.name}} in the required version range {{.range}} is not satisfied, the provided version is {{.version}}")
)
