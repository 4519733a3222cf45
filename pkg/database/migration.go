package database

import (
	"fmt"
	"strings"
)

// Migration is a named set of schema changes. Down queries run in the
// order they are stored, which is the reverse of how they were added.
type Migration struct {
	ID          string
	Description string
	Up          []string
	Down        []string
}

func (m *Migration) AddUp(query string) *Migration {
	m.Up = append(m.Up, query)
	return m
}

func (m *Migration) AddDown(query string) *Migration {
	m.Down = append([]string{query}, m.Down...)
	return m
}

type MigrationBuilder struct {
	migration *Migration
}

func CreateMigration(id, description string) *MigrationBuilder {
	return &MigrationBuilder{
		migration: &Migration{ID: id, Description: description},
	}
}

func (b *MigrationBuilder) CreateTable(tableName string, columns ...string) *MigrationBuilder {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		tableName, strings.Join(columns, ",\n    "))
	b.migration.AddUp(query)
	b.migration.AddDown(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName))
	return b
}

func (b *MigrationBuilder) CreateIndex(indexName, tableName string, columns ...string) *MigrationBuilder {
	b.migration.AddUp(fmt.Sprintf("CREATE INDEX %s ON %s (%s)", indexName, tableName, strings.Join(columns, ", ")))
	b.migration.AddDown(fmt.Sprintf("DROP INDEX %s", indexName))
	return b
}

func (b *MigrationBuilder) Raw(upQuery, downQuery string) *MigrationBuilder {
	b.migration.AddUp(upQuery)
	if downQuery != "" {
		b.migration.AddDown(downQuery)
	}
	return b
}

func (b *MigrationBuilder) Build() Migration {
	return *b.migration
}
