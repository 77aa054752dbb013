// internal/common/database/migrate.go
package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsTable keeps this service's schema version apart from the
// marketplace's own migrations in the same database.
const MigrationsTable = "search_schema_migrations"

// Migrate applies the search-owned tables (interactions, rank history, user
// preferences) from migrationsPath. The listing tables belong to the
// marketplace and are only read.
func (c *PostgresClient) Migrate(migrationsPath string) (uint, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return 0, fmt.Errorf("resolve migrations path: %w", err)
	}

	driver, err := migratepg.WithInstance(c.DB, &migratepg.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+abs, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
