package database

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"
)

// MigrationStatus is one applied migration.
type MigrationStatus struct {
	ID          string
	Description string
	AppliedAt   time.Time
	Batch       int
}

// MigrationRunner applies migrations in ID order and records them in
// schema_migrations. Each Run is one batch inside one transaction.
type MigrationRunner struct {
	db     *sql.DB
	driver string
}

func NewMigrationRunner(db *sql.DB, driver string) *MigrationRunner {
	return &MigrationRunner{db: db, driver: driver}
}

const migrationTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    id VARCHAR(255) PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    batch INTEGER NOT NULL
)`

func (r *MigrationRunner) CreateMigrationTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, migrationTableSQL); err != nil {
		return ErrFailedToCreateSchemaMigrationsTable.WithCause(err)
	}
	return nil
}

// Run applies the migrations not yet recorded and returns their IDs.
func (r *MigrationRunner) Run(ctx context.Context, migrations []Migration) ([]string, error) {
	if err := r.CreateMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(applied))
	nextBatch := 1
	for _, a := range applied {
		done[a.ID] = true
		nextBatch = max(nextBatch, a.Batch+1)
	}

	pending := slices.Clone(migrations)
	slices.SortFunc(pending, func(a, b Migration) int { return strings.Compare(a.ID, b.ID) })
	pending = slices.DeleteFunc(pending, func(m Migration) bool { return done[m.ID] })

	if len(pending) == 0 {
		return nil, nil
	}

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		for _, migration := range pending {
			if err := r.up(ctx, tx, migration, nextBatch); err != nil {
				return ErrMigrationFailed.
					WithDetail("id", migration.ID).
					WithDetail("reason", err.Error()).
					WithCause(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(pending))
	for _, m := range pending {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Rollback reverts the last steps applied migrations, newest batch first.
// steps <= 0 reverts everything.
func (r *MigrationRunner) Rollback(ctx context.Context, steps int, migrations []Migration) ([]string, error) {
	applied, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, ErrNoMigrationsToRollback
	}

	slices.SortFunc(applied, func(a, b MigrationStatus) int {
		if a.Batch != b.Batch {
			return b.Batch - a.Batch
		}
		return strings.Compare(b.ID, a.ID)
	})
	if steps <= 0 || steps > len(applied) {
		steps = len(applied)
	}
	rollback := applied[:steps]

	byID := make(map[string]Migration, len(migrations))
	for _, m := range migrations {
		byID[m.ID] = m
	}

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		for _, status := range rollback {
			if err := r.down(ctx, tx, status.ID, byID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rollback))
	for _, s := range rollback {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Status lists applied migrations by batch and ID.
func (r *MigrationRunner) Status(ctx context.Context) ([]MigrationStatus, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, description, applied_at, batch FROM schema_migrations ORDER BY batch, id")
	if err != nil {
		return nil, ErrFailedToGetAppliedMigrations.WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	var statuses []MigrationStatus
	for rows.Next() {
		var s MigrationStatus
		if err := rows.Scan(&s.ID, &s.Description, &s.AppliedAt, &s.Batch); err != nil {
			return nil, ErrFailedToGetAppliedMigrations.WithCause(err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedToGetAppliedMigrations.WithCause(err)
	}
	return statuses, nil
}

func (r *MigrationRunner) up(ctx context.Context, tx *sql.Tx, migration Migration, batch int) error {
	for _, query := range migration.Up {
		if strings.TrimSpace(query) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return ErrFailedToExecuteQuery.WithDetail("query", query).WithCause(err)
		}
	}

	_, err := tx.ExecContext(ctx,
		Rebind(r.driver, "INSERT INTO schema_migrations (id, description, batch) VALUES (?, ?, ?)"),
		migration.ID, migration.Description, batch)
	return err
}

func (r *MigrationRunner) down(ctx context.Context, tx *sql.Tx, id string, byID map[string]Migration) error {
	if migration, ok := byID[id]; ok {
		for _, query := range migration.Down {
			trimmed := strings.TrimSpace(query)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return ErrMigrationFailed.
					WithDetail("id", id).
					WithDetail("reason", "rollback query failed: "+err.Error()).
					WithCause(err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, Rebind(r.driver, "DELETE FROM schema_migrations WHERE id = ?"), id); err != nil {
		return ErrMigrationFailed.
			WithDetail("id", id).
			WithDetail("reason", "failed to delete migration record").
			WithCause(err)
	}
	return nil
}

func (r *MigrationRunner) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrFailedToBeginTransaction.WithCause(err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
