package config

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// envConfigLoader maps PREFIX_SOURCES__FILE__ROOT=/srv to sources.file.root.
//
// Feature app and service ids contain characters environment names cannot
// carry, so sections keyed by id are set with a YAML flow value instead:
//
//	APPHOST_EXTERNALS='{react: 18.2.0, react-dom: 18.2.0}'
//	APPHOST_FEATURE_APPS='{"acme:widget": {theme: dark}}'
//	APPHOST_PRELOAD='["file://widget.yaml", "sql://list"]'
type envConfigLoader struct {
	prefix string
}

func (l *envConfigLoader) Load() (map[string]any, error) {
	values := make(map[string]any)

	// Sorted, so REDIS is applied before REDIS__ADDR and the section wins.
	environ := os.Environ()
	slices.Sort(environ)

	for _, env := range environ {
		name, raw, _ := strings.Cut(env, "=")
		if !strings.HasPrefix(name, l.prefix) || name == l.prefix {
			continue
		}

		path := strings.Split(strings.ToLower(strings.TrimPrefix(name, l.prefix)), "__")
		value, err := parseEnvValue(raw)
		if err != nil {
			return nil, ErrParseEnv.WithDetail("name", name).WithDetail("reason", err.Error()).WithCause(err)
		}
		setPath(values, path, value)
	}

	return values, nil
}

func parseEnvValue(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var structured any
		if err := yaml.Unmarshal([]byte(trimmed), &structured); err != nil {
			return nil, err
		}
		return structured, nil
	}

	if b, err := strconv.ParseBool(raw); err == nil {
		return b, nil
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return raw, nil
}

// setPath stores value under path, replacing any scalar in the way.
func setPath(m map[string]any, path []string, value any) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}
