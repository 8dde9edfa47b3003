package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bluelist"
)

// Migrate creates every table the store needs. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables bluelist.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createItemsTable(ctx, pool, tables.Items); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DropTables removes the store's tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables bluelist.Tables) error {
	quotedTable := pgx.Identifier{tables.Items}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func createItemsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexTypeCreated := pgx.Identifier{fmt.Sprintf("idx_%s_type_created", tableName)}.Sanitize()
	indexFields := pgx.Identifier{fmt.Sprintf("idx_%s_fields", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			type TEXT NOT NULL,
			fields JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (type, created_at);

		CREATE INDEX IF NOT EXISTS %s
		ON %s USING GIN (fields jsonb_path_ops);
	`,
		quotedTable,
		indexTypeCreated, quotedTable,
		indexFields, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	return nil
}
