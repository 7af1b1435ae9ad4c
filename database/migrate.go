package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsPath = "migrations"

// DriverFunc creates a migrate database driver on an open sql.DB.
type DriverFunc func(*sql.DB) (migratedb.Driver, error)

// MigrationDriver returns the migrate driver matching a GORM driver name.
func MigrationDriver(driver string) (DriverFunc, error) {
	switch driver {
	case DriverSQLite, "":
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}, nil
	case DriverPostgres:
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratepgx.WithInstance(db, &migratepgx.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("no migration driver for %q", driver)
	}
}

// MigrateUp applies every pending embedded migration. Having nothing to
// apply is not an error.
func (d *DB) MigrateUp() error {
	m, err := d.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, _, _ := m.Version()
	d.log.Info("Database migrations applied", map[string]interface{}{"version": version})
	return nil
}

// MigrateDown rolls back every applied migration.
func (d *DB) MigrateDown() error {
	m, err := d.migrator()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateVersion returns the current schema version and dirty flag.
// A database with no applied migrations reports version 0.
func (d *DB) MigrateVersion() (uint, bool, error) {
	m, err := d.migrator()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// migrator builds a migrate instance over the shared pool. It must not be
// closed: closing it would close the pool.
func (d *DB) migrator() (*migrate.Migrate, error) {
	driverFunc, err := MigrationDriver(d.cfg.Driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	driver, err := driverFunc(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, d.cfg.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
