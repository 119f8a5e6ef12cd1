package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/msomdec/devconnector/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection holding all collections in one documents table.
type DB struct {
	SqlDB  *sql.DB
	logger *slog.Logger
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and limits the pool to a single connection, which
// serializes every transaction in the process.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db, logger: logger}, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB, d.logger)
}

// Ping checks that the database file is still reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Documents returns the document store backed by this database.
func (d *DB) Documents() *DocumentStore {
	return &DocumentStore{db: d.SqlDB}
}
