package externals

import (
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/shuldan/featurehub/pkg/feature"
)

// Validator checks required externals against the versions the integrator
// provides.
type Validator struct {
	provided map[string]*semver.Version
}

var _ feature.ExternalsValidator = (*Validator)(nil)

// NewValidator parses every provided version up front.
func NewValidator(provided map[string]string) (*Validator, error) {
	v := &Validator{provided: make(map[string]*semver.Version, len(provided))}
	for _, name := range slices.Sorted(maps.Keys(provided)) {
		version, err := semver.NewVersion(provided[name])
		if err != nil {
			return nil, ErrInvalidVersion.WithDetail("name", name).WithDetail("version", provided[name]).WithCause(err)
		}
		v.provided[name] = version
	}
	return v, nil
}

// Validate returns the first unsatisfied external, by name order.
func (v *Validator) Validate(required map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(required)) {
		versionRange := required[name]

		version, ok := v.provided[name]
		if !ok {
			return ErrExternalNotProvided.WithDetail("name", name)
		}

		constraint, err := semver.NewConstraint(versionRange)
		if err != nil {
			return ErrInvalidRange.WithDetail("name", name).WithDetail("range", versionRange).WithCause(err)
		}

		if !constraint.Check(version) {
			return ErrExternalIncompatible.
				WithDetail("name", name).
				WithDetail("range", versionRange).
				WithDetail("version", version.Original())
		}
	}
	return nil
}

// Provided returns the provided version of name.
func (v *Validator) Provided(name string) (string, bool) {
	version, ok := v.provided[name]
	if !ok {
		return "", false
	}
	return version.Original(), true
}
