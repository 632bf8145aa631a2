package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embeddedMigrations embed.FS

func migrationsDir(dialect Dialect) string {
	return fmt.Sprintf("migrations/%s", dialect)
}

type migrator struct {
	db      *sqlx.DB
	dialect Dialect

	logger *slog.Logger
}

func NewDatabaseMigrator(db *sqlx.DB, dialect Dialect, logger *slog.Logger) *migrator {
	return &migrator{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

// Migrate brings the ledger schema up to date, schemaName is ignored for sqlite
func (m *migrator) Migrate(ctx context.Context, schemaName string) error {
	switch m.dialect {
	case DialectPostgres:
		return m.migratePostgres(ctx, schemaName)
	case DialectSQLite:
		return m.migrateSQLite(ctx)
	}
	return fmt.Errorf("migrate: unknown dialect '%s'", m.dialect)
}

func (m *migrator) migratePostgres(ctx context.Context, schemaName string) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: failed to connect to db: %w", err)
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return fmt.Errorf("migrate: failed to create schema: %w", err)
	}

	_, err = conn.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schemaName)))
	if err != nil {
		return fmt.Errorf("migrate: failed to set search path: %w", err)
	}

	migrationSource, err := iofs.New(embeddedMigrations, migrationsDir(DialectPostgres))
	if err != nil {
		return fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err)
	}
	defer migrationSource.Close()

	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		DatabaseName: DB_NAME,
		SchemaName:   schemaName,
	})
	if err != nil {
		return fmt.Errorf("migrate: failed to create postgres driver: %w", err)
	}

	migratorInstance, err := migrate.NewWithInstance("iofs", migrationSource, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("migrate: failed to create migration instance: %w", err)
	}
	defer migratorInstance.Close()

	return m.up(ctx, migratorInstance)
}

func (m *migrator) migrateSQLite(ctx context.Context) error {
	migrationSource, err := iofs.New(embeddedMigrations, migrationsDir(DialectSQLite))
	if err != nil {
		return fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err)
	}
	defer migrationSource.Close()

	dbDriver, err := sqlite.WithInstance(m.db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate: failed to create sqlite driver: %w", err)
	}

	// NOTE: Not closing the instance, the sqlite driver would close m.db with it
	migratorInstance, err := migrate.NewWithInstance("iofs", migrationSource, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("migrate: failed to create migration instance: %w", err)
	}

	return m.up(ctx, migratorInstance)
}

func (m *migrator) up(ctx context.Context, migratorInstance *migrate.Migrate) error {
	m.logger.InfoContext(ctx, "Starting migrations...", "dialect", string(m.dialect))
	if err := migratorInstance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.InfoContext(ctx, "No migrations to run.")
		} else {
			return fmt.Errorf("migrate: failed to migrate: %w", err)
		}
	}
	m.logger.InfoContext(ctx, "Migrations completed successfully.")

	return nil
}
