package database

import (
	"fmt"
	"log/slog"

	"github.com/Amund211/blacksmith/internal/config"
	"github.com/jmoiron/sqlx"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// NewLedgerDatabase connects to Postgres when a connection string is configured, and to SQLite otherwise
func NewLedgerDatabase(conf config.Config, logger *slog.Logger) (*sqlx.DB, Dialect, error) {
	if conf.DBConnectionString() != "" {
		db, err := NewPostgresDatabase(conf.DBConnectionString())
		if err != nil {
			return nil, "", fmt.Errorf("failed to create postgres database: %w", err)
		}
		return db, DialectPostgres, nil
	}

	if !conf.IsDevelopment() {
		return nil, "", fmt.Errorf("%w: sqlite ledger outside development", config.ErrInvalidValue)
	}

	logger.Info("Using sqlite ledger", "path", conf.LedgerSQLitePath())
	db, err := NewSQLiteDatabase(conf.LedgerSQLitePath())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sqlite database: %w", err)
	}
	return db, DialectSQLite, nil
}
