package database

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// RunMigrations executes database migrations found under migrationsPath.
func RunMigrations(migrationsPath string, log *zap.Logger) error {
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}
	return runMigrateInstance(sqlDB, migrationsPath, log)
}

func runMigrateInstance(db *sql.DB, migrationsPath string, log *zap.Logger) error {
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceURL := fmt.Sprintf("file://%s", absPath)
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err == migrate.ErrNoChange {
		log.Info("no migrations to run")
	} else {
		log.Info("migrations completed")
	}
	return nil
}

// CreateMigrationsTable ensures the migrations table exists.
func CreateMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version bigint NOT NULL,
		dirty boolean NOT NULL,
		PRIMARY KEY (version)
	);`
	return DB.Exec(query).Error
}

// GetMigrationVersion returns the current migration version.
func GetMigrationVersion() (int, bool, error) {
	var exists bool
	err := DB.Raw(`SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = 'schema_migrations'
	)`).Scan(&exists).Error
	if err != nil {
		return 0, false, err
	}
	if !exists {
		return 0, false, nil
	}

	var version int
	var dirty bool
	err = DB.Raw(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Row().Scan(&version, &dirty)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return version, dirty, nil
}
