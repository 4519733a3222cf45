package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shuldan/featurehub/pkg/feature"
)

func TestMux(t *testing.T) {
	t.Parallel()

	builtin := NewCatalog()
	builtin.MustRegister("builtin://a", "from catalog")
	fallback := NewCatalog()
	fallback.MustRegister("plain", "from fallback")

	m := NewMux(nil).Handle("builtin", builtin).Fallback(fallback)

	tests := []struct {
		location string
		want     any
		err      error
	}{
		{"builtin://a", "from catalog", nil},
		{"plain", "from fallback", nil},
		{"s3://bucket/app.yaml", nil, ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		got, err := m.Load(context.Background(), tt.location)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Load(%s): expected %v, got %v", tt.location, tt.err, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Load(%s) = %v, %v", tt.location, got, err)
		}
	}

	if diff := cmp.Diff([]string{"builtin"}, m.Schemes()); diff != "" {
		t.Errorf("schemes mismatch (-want +got):\n%s", diff)
	}
}

func TestMux_NoFallback(t *testing.T) {
	t.Parallel()

	if _, err := NewMux(nil).Load(context.Background(), "plain"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestManager_LoadsManifestFromFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "widget.yaml", widgetManifest)
	files, err := NewFileSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = files.Close() }()

	mux := NewMux(nil).Handle("file", NewManifestLoader(files, testFactories(t)))
	m := feature.NewManager(nopRegistry{}, feature.WithModuleLoader(mux))

	first, err := m.AsyncDefinition("file://widget.yaml")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := m.AsyncDefinition("file://widget.yaml")
	if first != second {
		t.Error("the same location must share one handle")
	}

	definition, err := first.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	scope, err := m.GetScope(definition, feature.ScopeOptions{IDSpecifier: "main"})
	if err != nil {
		t.Fatalf("GetScope failed: %v", err)
	}
	env, ok := feature.InstanceOf[feature.Environment](scope)
	if !ok || env.IDSpecifier != "main" {
		t.Errorf("unexpected instance %#v", scope.Instance())
	}
	_ = m.Shutdown()
}

type nopRegistry struct{}

func (nopRegistry) RegisterServices([]*feature.ServiceProvider, string) error { return nil }

func (nopRegistry) BindServices(*feature.Definition, string) (*feature.ServicesBinding, error) {
	return &feature.ServicesBinding{}, nil
}
