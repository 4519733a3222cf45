package feature

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shuldan/featurehub/pkg/contracts"
)

type recordedRegistration struct {
	providers []*ServiceProvider
	ownerID   string
}

type fakeRegistry struct {
	mu            sync.Mutex
	registrations []recordedRegistration
	binds         []string
	unbinds       []string

	registerErr error
	bindErr     error
	unbindErr   error
	services    map[string]any
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{services: map[string]any{"acme:logger": "logger-service"}}
}

func (r *fakeRegistry) RegisterServices(providers []*ServiceProvider, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registrations = append(r.registrations, recordedRegistration{providers: providers, ownerID: ownerID})
	return nil
}

func (r *fakeRegistry) BindServices(consumer *Definition, idSpecifier string) (*ServicesBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindErr != nil {
		return nil, r.bindErr
	}
	uid := UID(consumer.ID, idSpecifier)
	r.binds = append(r.binds, uid)

	services := make(map[string]any, len(r.services))
	for k, v := range r.services {
		services[k] = v
	}

	unbindErr := r.unbindErr
	return &ServicesBinding{
		Services: services,
		Unbind: func() error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.unbinds = append(r.unbinds, uid)
			return unbindErr
		},
	}, nil
}

func (r *fakeRegistry) registrationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registrations)
}

func (r *fakeRegistry) bindCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.binds)
}

func (r *fakeRegistry) unbindCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.unbinds)
}

type fakeValidator struct {
	err      error
	required []map[string]string
}

func (v *fakeValidator) Validate(required map[string]string) error {
	v.required = append(v.required, required)
	return v.err
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Trace(msg string, args ...any)    { l.record("trace", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any)    { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)     { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)     { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any)    { l.record("error", msg, args) }
func (l *recordingLogger) Critical(msg string, args ...any) { l.record("critical", msg, args) }
func (l *recordingLogger) With(_ ...any) contracts.Logger   { return l }

func (l *recordingLogger) count(level, substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range *l.entries {
		if e.level == level && strings.Contains(e.msg, substr) {
			n++
		}
	}
	return n
}

// blockingLoader counts calls and holds every load until release is closed.
type blockingLoader struct {
	calls    atomic.Int32
	release  chan struct{}
	payloads map[string]any
	err      error
}

func newBlockingLoader(payloads map[string]any) *blockingLoader {
	return &blockingLoader{release: make(chan struct{}), payloads: payloads}
}

func (l *blockingLoader) Load(ctx context.Context, location string) (any, error) {
	l.calls.Add(1)
	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if l.err != nil {
		return nil, l.err
	}
	payload, ok := l.payloads[location]
	if !ok {
		return nil, fmt.Errorf("nothing at %s", location)
	}
	return payload, nil
}

func newDefinition(id string) *Definition {
	return &Definition{
		ID: id,
		Create: func(env Environment) (any, error) {
			return &env, nil
		},
	}
}

// rejectingPublisher fails every publish and remembers what it was given.
type rejectingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *rejectingPublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return errors.New("event bus full")
}
