package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over the embedded migrations for the
// open pool. Closing the returned instance releases the connection it holds
// and leaves the pool open.
func NewMigrator(d *DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := migrationDriver(d)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Driver(), driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrationDriver returns a driver whose Close does not close the pool.
// The postgres driver runs on one dedicated connection taken from the pool.
func migrationDriver(d *DB) (migratedb.Driver, error) {
	switch d.Driver() {
	case DriverPostgres:
		ctx := context.Background()
		conn, err := d.Raw().Conn(ctx)
		if err != nil {
			return nil, err
		}
		driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return driver, nil
	case DriverSQLite:
		driver, err := sqlite3.WithInstance(d.Raw(), &sqlite3.Config{})
		if err != nil {
			return nil, err
		}
		return sharedPoolDriver{driver}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", d.Driver())
}

// sharedPoolDriver keeps the pool open when the migrator is closed.
type sharedPoolDriver struct {
	migratedb.Driver
}

func (sharedPoolDriver) Close() error { return nil }

// Migrate applies every pending migration. The pool stays open.
func Migrate(d *DB) error {
	m, err := NewMigrator(d)
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("Failed to close migrator", "source_err", srcErr, "db_err", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("Database migrated", "version", version, "dirty", dirty)
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func (migrateLogger) Verbose() bool { return false }
