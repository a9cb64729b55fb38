package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"bookingflow/pkg/config"
)

func newMigrate(migrationsPath string, cfg config.Config) (*migrate.Migrate, error) {
	m, err := migrate.New(migrationsPath, migrationConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", migrationsPath, err)
	}
	return m, nil
}

// MigrateConfig applies pending audit migrations from migrationsPath.
func MigrateConfig(migrationsPath string, cfg config.Config) error {
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrateDown rolls back the last n migrations.
func MigrateDown(migrationsPath string, cfg config.Config, n int) error {
	if n <= 0 {
		return fmt.Errorf("down steps must be positive, got %d", n)
	}
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrationVersion reports the applied schema version. A database with no
// migrations yet reports version 0.
func MigrationVersion(migrationsPath string, cfg config.Config) (version uint, dirty bool, err error) {
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
