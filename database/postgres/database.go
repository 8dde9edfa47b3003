package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bluelist"
)

// Database owns a connection pool and the table layout it serves.
type Database struct {
	pool   *pgxpool.Pool
	tables bluelist.Tables
}

// Open creates a connection pool for dsn.
func Open(ctx context.Context, dsn string, tables bluelist.Tables) (*Database, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Database{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *Database) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.pool, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *Database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// Store returns the document store backed by this pool.
func (d *Database) Store() (*Repo, error) {
	return NewRepo(d.pool, d.tables)
}

// DropTables removes the store's tables.
func (d *Database) DropTables(ctx context.Context) error {
	return DropTables(ctx, d.pool, d.tables)
}

// Close closes the database connection pool.
func (d *Database) Close() {
	d.pool.Close()
}
