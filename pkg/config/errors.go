package config

import "github.com/shuldan/featurehub/pkg/errors"

var newConfigCode = errors.WithPrefix("CONFIG")

var (
	ErrNoConfigSource = newConfigCode().New("no valid configuration source found. Loader: {{.loader}}")
	ErrParseYAML      = newConfigCode().New("failed to parse YAML file {{.path}}: {{.reason}}")
	ErrParseEnv       = newConfigCode().New("environment variable {{.name}} is not valid YAML: {{.reason}}")
	ErrTemplate       = newConfigCode().New("config value {{.value}} could not be rendered: {{.reason}}")
)
