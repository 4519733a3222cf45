package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// templatedLoader renders text/template expressions in string values, so
// database DSNs and redis passwords can come from the environment or from
// mounted secret files:
//
//	database:
//	  dsn: 'postgres://host:{{ file "/run/secrets/pg" }}@db/features'
type templatedLoader struct {
	loader Loader
}

func newTemplatedLoader(loader Loader) Loader {
	return &templatedLoader{
		loader: loader,
	}
}

func (t *templatedLoader) Load() (map[string]any, error) {
	raw, err := t.loader.Load()
	if err != nil {
		return nil, err
	}

	r := &renderer{env: environ()}
	r.funcs = r.newFuncMap()

	processed, err := r.processValue(raw)
	if err != nil {
		return nil, err
	}
	return processed.(map[string]any), nil
}

type renderer struct {
	env   map[string]string
	funcs template.FuncMap
}

func (r *renderer) processValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if !strings.Contains(val, "{{") || !strings.Contains(val, "}}") {
			return val, nil
		}
		result, err := r.render(val)
		if err != nil {
			return nil, ErrTemplate.WithDetail("value", val).WithDetail("reason", err.Error()).WithCause(err)
		}
		return result, nil
	case map[string]any:
		mapped := make(map[string]any, len(val))
		for k, item := range val {
			out, err := r.processValue(item)
			if err != nil {
				return nil, err
			}
			mapped[k] = out
		}
		return mapped, nil
	case []any:
		result := make([]any, 0, len(val))
		for _, item := range val {
			out, err := r.processValue(item)
			if err != nil {
				return nil, err
			}
			result = append(result, out)
		}
		return result, nil
	default:
		return val, nil
	}
}

func (r *renderer) newFuncMap() template.FuncMap {
	return template.FuncMap{
		"default": func(def, val interface{}) string {
			s, ok := val.(string)
			if !ok || s == "" {
				if s, ok := def.(string); ok {
					return s
				}
				return ""
			}
			return s
		},
		"env": func(name string) string {
			return r.env[name]
		},
		// file reads a secret, dropping the trailing newline editors add.
		"file": func(path string) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return strings.TrimRight(string(data), "\r\n"), nil
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

func (r *renderer) render(input string) (string, error) {
	tmpl, err := template.New("config").Option("missingkey=zero").Funcs(r.funcs).Parse(input)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, r.env); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func environ() map[string]string {
	data := make(map[string]string)
	for _, env := range os.Environ() {
		if name, value, ok := strings.Cut(env, "="); ok {
			data[name] = value
		}
	}
	return data
}
