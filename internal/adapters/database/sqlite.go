package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const SQLITE_DRIVER = "sqlite"

// SQLITE_IN_MEMORY is a private database that lives as long as its connection
const SQLITE_IN_MEMORY = ":memory:"

func init() {
	sqlx.BindDriver(SQLITE_DRIVER, sqlx.QUESTION)
}

// NewSQLiteDatabase opens the development ledger database at path
func NewSQLiteDatabase(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	if path != SQLITE_IN_MEMORY {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.Connect(SQLITE_DRIVER, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// SQLite serializes writers, a single connection also keeps an in-memory database alive
	db.SetMaxOpenConns(1)

	return db, nil
}
