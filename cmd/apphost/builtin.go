package main

import (
	"fmt"

	"github.com/shuldan/featurehub/pkg/feature"
	"github.com/shuldan/featurehub/pkg/loader"
	"github.com/shuldan/featurehub/pkg/services"
)

// builtinFactories are available to every manifest served by apphost.
//
//	echo    app whose instance is its own Environment
//	static  service exposing config "value" under config "version"
func builtinFactories() *loader.Factories {
	f := loader.NewFactories()
	f.MustRegisterApp("echo", func(env feature.Environment) (any, error) {
		return env, nil
	})
	f.MustRegisterService("static", staticService)
	return f
}

func staticService(env feature.ServiceEnvironment) (feature.SharedService, error) {
	cfg, _ := env.Config.(map[string]any)
	version, _ := cfg["version"].(string)
	if version == "" {
		return nil, fmt.Errorf("static service: config needs a version")
	}
	return services.Shared(version, cfg["value"]), nil
}
