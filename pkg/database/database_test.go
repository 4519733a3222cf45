package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "test.db"), WithRetry(0, 0))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
	}{
		{"defaults", nil},
		{"pool options", []Option{WithConnectionPool(10, 5, time.Hour), WithConnectionIdleTime(time.Minute)}},
		{"ping timeout", []Option{WithPingTimeout(10 * time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(context.Background(), "sqlite3", ":memory:", tt.options...)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer func() { _ = db.Close() }()

			if err := db.Ping(); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
		})
	}
}

func TestOpen_UnknownDriverRetriesThenFails(t *testing.T) {
	start := time.Now()
	_, err := Open(context.Background(), "unknown-driver", "", WithRetry(2, 10*time.Millisecond))
	if !errors.Is(err, ErrFailedToOpenDatabase) {
		t.Fatalf("expected ErrFailedToOpenDatabase, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected two retry delays, took %v", elapsed)
	}
}

func TestOpen_ContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "unknown-driver", "", WithRetry(100, time.Hour))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled as cause, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite3", "SELECT a FROM t WHERE b = ? AND c = ?"},
		{"mysql", "SELECT a FROM t WHERE b = ? AND c = ?"},
		{"postgres", "SELECT a FROM t WHERE b = $1 AND c = $2"},
	}

	for _, tt := range tests {
		if got := Rebind(tt.driver, "SELECT a FROM t WHERE b = ? AND c = ?"); got != tt.want {
			t.Errorf("Rebind(%s) = %q, want %q", tt.driver, got, tt.want)
		}
	}
}
