package host

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/feature"
	"github.com/shuldan/featurehub/pkg/loader"
)

const widgetManifest = `id: "acme:widget"
factory: widget
`

type mockLogger struct {
	mu      sync.Mutex
	entries []string
	started chan struct{}
	once    sync.Once
}

func newMockLogger() *mockLogger {
	return &mockLogger{started: make(chan struct{})}
}

func (m *mockLogger) record(msg string) {
	m.mu.Lock()
	m.entries = append(m.entries, msg)
	m.mu.Unlock()
	if msg == "feature app host started" {
		m.once.Do(func() { close(m.started) })
	}
}

func (m *mockLogger) Trace(msg string, _ ...any)    { m.record(msg) }
func (m *mockLogger) Debug(msg string, _ ...any)    { m.record(msg) }
func (m *mockLogger) Info(msg string, _ ...any)     { m.record(msg) }
func (m *mockLogger) Warn(msg string, _ ...any)     { m.record(msg) }
func (m *mockLogger) Error(msg string, _ ...any)    { m.record(msg) }
func (m *mockLogger) Critical(msg string, _ ...any) { m.record(msg) }
func (m *mockLogger) With(...any) contracts.Logger  { return m }

func (m *mockLogger) logged(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e == msg {
			return true
		}
	}
	return false
}

func testFactories() *loader.Factories {
	f := loader.NewFactories()
	f.MustRegisterApp("widget", func(env feature.Environment) (any, error) {
		return env, nil
	})
	return f
}

func widget(externals map[string]string) *feature.Definition {
	return &feature.Definition{
		ID:           "acme:widget",
		Dependencies: feature.Dependencies{Externals: externals},
		Create: func(env feature.Environment) (any, error) {
			return env, nil
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func runAsync(ctx context.Context, h *Host) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- h.Run(ctx)
	}()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

type mockRedis struct {
	redis.UniversalClient
	mu     sync.Mutex
	values map[string]string
}

func newMockRedis() *mockRedis {
	return &mockRedis{values: map[string]string{}}
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := m.values[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *mockRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := value.([]byte); ok {
		m.values[key] = string(b)
	}
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	cmd.SetVal("OK")
	return cmd
}
