package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuldan/featurehub/pkg/feature"
)

const widgetManifest = `
id: "acme:widget"
factory: widget
dependencies:
  services:
    "acme:store": "^1.0.0"
  externals:
    react: "^18.0.0"
optional_dependencies:
  services:
    "acme:tracker": "^2.0.0"
own_services:
  - id: "acme:store"
    factory: store
`

func testFactories(t *testing.T) *Factories {
	t.Helper()

	f := NewFactories()
	f.MustRegisterApp("widget", func(env feature.Environment) (any, error) {
		return env, nil
	})
	f.MustRegisterService("store", func(feature.ServiceEnvironment) (feature.SharedService, error) {
		return feature.SharedService{
			"1.1.0": func(string) feature.ServiceBinding {
				return feature.ServiceBinding{Service: "store"}
			},
		}, nil
	})
	return f
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

type mockRedis struct {
	redis.UniversalClient
	mu     sync.Mutex
	values map[string]string
	err    error
	gets   []string
}

func newMockRedis() *mockRedis {
	return &mockRedis{values: map[string]string{}}
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, key)

	cmd := redis.NewStringCmd(ctx, "get", key)
	switch v, ok := m.values[key]; {
	case m.err != nil:
		cmd.SetErr(m.err)
	case !ok:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(v)
	}
	return cmd
}

func (m *mockRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	cmd.SetVal("OK")
	return cmd
}
