package loader

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/shuldan/featurehub/pkg/database"
)

const DefaultManifestTable = "feature_app_manifests"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads manifests from a table keyed by location.
type SQLSource struct {
	db     *sql.DB
	driver string
	table  string
}

type SQLOption func(*SQLSource)

func WithTable(name string) SQLOption {
	return func(s *SQLSource) {
		if name != "" {
			s.table = name
		}
	}
}

func NewSQLSource(db *sql.DB, driver string, opts ...SQLOption) (*SQLSource, error) {
	s := &SQLSource{db: db, driver: driver, table: DefaultManifestTable}
	for _, opt := range opts {
		opt(s)
	}
	if !tableName.MatchString(s.table) {
		return nil, ErrInvalidTable.WithDetail("table", s.table)
	}
	return s, nil
}

// Migrations returns the schema of the manifest table.
func (s *SQLSource) Migrations() []database.Migration {
	return []database.Migration{
		database.CreateMigration(s.table+"_001", "create "+s.table).
			CreateTable(s.table,
				"location VARCHAR(255) PRIMARY KEY",
				"manifest TEXT NOT NULL",
				"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
			).
			Build(),
	}
}

// Migrate applies Migrations and returns the IDs it applied.
func (s *SQLSource) Migrate(ctx context.Context) ([]string, error) {
	return database.NewMigrationRunner(s.db, s.driver).Run(ctx, s.Migrations())
}

func (s *SQLSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	query := database.Rebind(s.driver, "SELECT manifest FROM "+s.table+" WHERE location = ?")

	var manifest string
	err := s.db.QueryRowContext(ctx, query, keyOf(location)).Scan(&manifest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModuleNotFound.WithDetail("location", location)
	}
	if err != nil {
		return nil, ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}
	return []byte(manifest), nil
}

// Put replaces the manifest stored at location.
func (s *SQLSource) Put(ctx context.Context, location string, manifest []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}

	key := keyOf(location)
	_, err = tx.ExecContext(ctx, database.Rebind(s.driver, "DELETE FROM "+s.table+" WHERE location = ?"), key)
	if err == nil {
		_, err = tx.ExecContext(ctx,
			database.Rebind(s.driver, "INSERT INTO "+s.table+" (location, manifest) VALUES (?, ?)"),
			key, string(manifest))
	}
	if err != nil {
		_ = tx.Rollback()
		return ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}
	return tx.Commit()
}
