package loader

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shuldan/featurehub/pkg/database"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "manifests.db"), database.WithRetry(0, 0))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLSource(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLSource(openSQLite(t), "sqlite3")
	if err != nil {
		t.Fatal(err)
	}

	applied, err := s.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("expected one migration, got %v", applied)
	}
	if again, err := s.Migrate(ctx); err != nil || len(again) != 0 {
		t.Errorf("second Migrate must be a no-op, got %v, %v", again, err)
	}

	if err := s.Put(ctx, "sql://widget", []byte("id: old\nfactory: widget\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "sql://widget", []byte(widgetManifest)); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	data, err := s.Fetch(ctx, "sql://widget")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != widgetManifest {
		t.Errorf("Put must replace the manifest, got %q", data)
	}

	if _, err := s.Fetch(ctx, "sql://absent"); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestSQLSource_MissingTable(t *testing.T) {
	s, _ := NewSQLSource(openSQLite(t), "sqlite3", WithTable("not_migrated"))

	if _, err := s.Fetch(context.Background(), "sql://widget"); !errors.Is(err, ErrSourceFetch) {
		t.Errorf("expected ErrSourceFetch, got %v", err)
	}
}

func TestNewSQLSource_InvalidTable(t *testing.T) {
	if _, err := NewSQLSource(nil, "sqlite3", WithTable("manifests; DROP TABLE x")); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}
}
