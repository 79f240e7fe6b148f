package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/schemas"
)

// Migrate applies every pending embedded migration for the connection's driver.
// The connection stays open afterwards.
func Migrate(db *sqlx.DB) error {
	driverName := db.DriverName()

	source, err := iofs.New(schemas.Migrations, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("iofs.New(%s) > %w", driverName, err)
	}

	var target migratedb.Driver
	switch driverName {
	case config.DriverMySQL:
		target, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case config.DriverSQLite:
		target, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", driverName, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, target)
	if err != nil {
		return fmt.Errorf("migrate.NewWithInstance() > %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Default().Debug("database schema is up to date", "driver", driverName)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	slog.Default().Info("database migrated", "driver", driverName, "version", version, "dirty", dirty)
	return nil
}
