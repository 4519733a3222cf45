package feature

import (
	"runtime"
	"testing"
)

var catalogWidget = &Definition{
	ID:          "acme:catalog-widget",
	OwnServices: []*ServiceProvider{{ID: "acme:catalog-service"}},
	Create: func(env Environment) (any, error) {
		return env.IDSpecifier, nil
	},
}

var pluginWidget Definition

func init() {
	pluginWidget = Definition{
		ID:          "acme:plugin-widget",
		OwnServices: []*ServiceProvider{{ID: "acme:plugin-service"}},
		Create: func(Environment) (any, error) {
			return "plugin", nil
		},
	}
}

func TestGetScope_PackageLevelDefinitions(t *testing.T) {
	registry := newFakeRegistry()
	m := NewManager(registry, WithLogger(newRecordingLogger()))

	for _, definition := range []*Definition{catalogWidget, &pluginWidget} {
		for _, specifier := range []string{"a", "b"} {
			scope, err := m.GetScope(definition, ScopeOptions{IDSpecifier: specifier})
			if err != nil {
				t.Fatalf("GetScope(%s, %s): %v", definition.ID, specifier, err)
			}
			defer func() { _ = scope.Destroy() }()
		}
	}

	if registry.registrationCount() != 2 {
		t.Errorf("expected one registration per definition, got %d", registry.registrationCount())
	}
}

func TestIdentitySet(t *testing.T) {
	s := newIdentitySet()
	heap := newDefinition("acme:heap")

	for _, d := range []*Definition{heap, catalogWidget, &pluginWidget} {
		if s.has(d) {
			t.Errorf("%s should not be a member yet", d.ID)
		}
		s.add(d)
		s.add(d)
		if !s.has(d) {
			t.Errorf("%s should be a member", d.ID)
		}
	}

	if s.len() != 3 {
		t.Errorf("expected 3 members, got %d", s.len())
	}
	runtime.KeepAlive(heap)
	if s.has(newDefinition("acme:heap")) {
		t.Error("membership is by pointer identity, not by ID")
	}
}
