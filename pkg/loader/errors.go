package loader

import "github.com/shuldan/featurehub/pkg/errors"

var newLoaderCode = errors.WithPrefix("LOADER")

var (
	ErrModuleNotFound    = newLoaderCode().New("no feature app module found at {{.location}}")
	ErrInvalidLocation   = newLoaderCode().New("invalid location {{.location}}: {{.reason}}")
	ErrLocationExists    = newLoaderCode().New("a module is already registered at {{.location}}")
	ErrUnsupportedScheme = newLoaderCode().New("no loader handles the {{.scheme}} scheme of {{.location}}")
	ErrSourceFetch       = newLoaderCode().New("the manifest at {{.location}} could not be fetched")
	ErrManifestParse     = newLoaderCode().New("the manifest at {{.location}} could not be parsed")
	ErrInvalidManifest   = newLoaderCode().New("invalid manifest: {{.reason}}")
	ErrUnknownFactory    = newLoaderCode().New("no {{.kind}} factory named {{.name}}")
	ErrFactoryExists     = newLoaderCode().New("a {{.kind}} factory named {{.name}} is already registered")
	ErrPluginOpen        = newLoaderCode().New("the plugin {{.path}} could not be opened")
	ErrPluginSymbol      = newLoaderCode().New("the plugin {{.path}} does not export {{.symbol}}")
	ErrInvalidTable      = newLoaderCode().New("invalid manifest table name {{.table}}")
)
