package database

import "github.com/shuldan/featurehub/pkg/errors"

var newDatabaseCode = errors.WithPrefix("DATABASE")

var (
	ErrFailedToOpenDatabase                = newDatabaseCode().New("failed to open {{.driver}} database")
	ErrMigrationFailed                     = newDatabaseCode().New("migration {{.id}} failed: {{.reason}}")
	ErrFailedToCreateSchemaMigrationsTable = newDatabaseCode().New("failed to create schema_migrations table")
	ErrFailedToGetAppliedMigrations        = newDatabaseCode().New("failed to get applied migrations")
	ErrFailedToBeginTransaction            = newDatabaseCode().New("failed to begin transaction")
	ErrNoMigrationsToRollback              = newDatabaseCode().New("no migrations to rollback")
	ErrFailedToExecuteQuery                = newDatabaseCode().New("failed to execute query: {{.query}}")
)
