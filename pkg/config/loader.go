package config

// Loader produces one layer of the host configuration.
type Loader interface {
	Load() (map[string]any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func() (map[string]any, error)

func (f LoaderFunc) Load() (map[string]any, error) {
	return f()
}
