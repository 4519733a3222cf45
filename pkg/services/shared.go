package services

import "github.com/shuldan/featurehub/pkg/feature"

// Shared exposes one instance of svc to every consumer under version.
func Shared(version string, svc any) feature.SharedService {
	return feature.SharedService{
		version: func(string) feature.ServiceBinding {
			return feature.ServiceBinding{Service: svc}
		},
	}
}

// PerConsumer builds a fresh service for each consumer UID. release, when
// set, runs when that consumer is unbound.
func PerConsumer(version string, build func(consumerUID string) any, release func(consumerUID string)) feature.SharedService {
	return feature.SharedService{
		version: func(consumerUID string) feature.ServiceBinding {
			binding := feature.ServiceBinding{Service: build(consumerUID)}
			if release != nil {
				binding.Unbind = func() { release(consumerUID) }
			}
			return binding
		},
	}
}
