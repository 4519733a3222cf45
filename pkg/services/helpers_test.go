package services

import (
	"strings"
	"sync"

	"github.com/shuldan/featurehub/pkg/contracts"
	"github.com/shuldan/featurehub/pkg/feature"
)

type logEntry struct {
	level string
	msg   string
}

type mockLogger struct {
	mu   sync.Mutex
	logs []logEntry
}

func (m *mockLogger) add(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, logEntry{level, msg})
}

func (m *mockLogger) Trace(msg string, _ ...any)     { m.add("trace", msg) }
func (m *mockLogger) Debug(msg string, _ ...any)     { m.add("debug", msg) }
func (m *mockLogger) Info(msg string, _ ...any)      { m.add("info", msg) }
func (m *mockLogger) Warn(msg string, _ ...any)      { m.add("warn", msg) }
func (m *mockLogger) Error(msg string, _ ...any)     { m.add("error", msg) }
func (m *mockLogger) Critical(msg string, _ ...any)  { m.add("critical", msg) }
func (m *mockLogger) With(_ ...any) contracts.Logger { return m }

func (m *mockLogger) count(level, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.logs {
		if e.level == level && strings.Contains(e.msg, substr) {
			n++
		}
	}
	return n
}

func newTestRegistry() (*Registry, *mockLogger) {
	log := &mockLogger{}
	return NewRegistry(WithLogger(log)), log
}

func provider(id string, shared feature.SharedService) *feature.ServiceProvider {
	return &feature.ServiceProvider{
		ID: id,
		Create: func(feature.ServiceEnvironment) (feature.SharedService, error) {
			return shared, nil
		},
	}
}

func consumer(id string, required map[string]string) *feature.Definition {
	return &feature.Definition{
		ID:           id,
		Dependencies: feature.Dependencies{Services: required},
		Create: func(env feature.Environment) (any, error) {
			return env.Services, nil
		},
	}
}

// countingBinder records binds and unbinds per consumer.
type countingBinder struct {
	mu      sync.Mutex
	binds   []string
	unbinds []string
}

func (c *countingBinder) service(version string, value any) feature.SharedService {
	return feature.SharedService{
		version: func(uid string) feature.ServiceBinding {
			c.mu.Lock()
			c.binds = append(c.binds, uid)
			c.mu.Unlock()
			return feature.ServiceBinding{
				Service: value,
				Unbind: func() {
					c.mu.Lock()
					c.unbinds = append(c.unbinds, uid)
					c.mu.Unlock()
				},
			}
		},
	}
}

func (c *countingBinder) unbindCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unbinds)
}
