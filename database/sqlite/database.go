package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/bluelist"

	_ "modernc.org/sqlite" // SQLite driver
)

// Database owns an SQLite handle and the table layout it serves.
type Database struct {
	db     *sql.DB
	tables bluelist.Tables
}

// Open opens the SQLite database at dsn. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, dsn string, tables bluelist.Tables) (*Database, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows one writer, and every connection to ":memory:" is a
	// separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Database{db: db, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *Database) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.db, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *Database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Store returns the document store backed by this database.
func (d *Database) Store() (*Repo, error) {
	return NewRepo(d.db, d.tables)
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DropTables removes the store's tables.
func (d *Database) DropTables(ctx context.Context) error {
	return DropTables(ctx, d.db, d.tables)
}
