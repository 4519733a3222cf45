package services

import "github.com/shuldan/featurehub/pkg/errors"

var newServiceCode = errors.WithPrefix("SERVICES")

var (
	ErrCircularDependency   = newServiceCode().New("feature services of {{.owner}} depend on each other: {{.chain}}")
	ErrInvalidVersion       = newServiceCode().New("feature service {{.id}} provides an invalid version {{.version}}")
	ErrServiceCreate        = newServiceCode().New("feature service {{.id}} could not be created")
	ErrServiceNotRegistered = newServiceCode().New("feature service {{.id}} required by {{.consumer}} is not registered")
	ErrServiceIncompatible  = newServiceCode().New("feature service {{.id}} {{.range}} required by {{.consumer}} is not available, registered versions: {{.available}}")
	ErrInvalidRange         = newServiceCode().New("feature service {{.id}} is required by {{.consumer}} with an invalid range {{.range}}")
	ErrServiceBind          = newServiceCode().New("feature service {{.id}} could not be bound to {{.consumer}}")
	ErrAlreadyBound         = newServiceCode().New("feature services are already bound to {{.consumer}}")
	ErrAlreadyUnbound       = newServiceCode().New("feature services of {{.consumer}} are already unbound")
)
