// Package postgres implements bluelist.DocumentStore on PostgreSQL, keeping
// each payload in a JSONB column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database/internal"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables bluelist.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Items}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Find pushes the type, identifier and field conditions into the query. JSONB
// containment is looser than equality for nested values, so rows are
// re-checked with Filter.Matches.
func (r *Repo) Find(ctx context.Context, typeName string, filter bluelist.Filter, limit int) ([]bluelist.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("find: %w: negative limit", bluelist.ErrInvalidInput)
	}

	query := fmt.Sprintf(`SELECT id, type, fields FROM %s WHERE type = $1`, r.tableName)
	args := []any{typeName}

	if _, pinned := filter[bluelist.IDField]; pinned {
		id, ok := parseID(filter)
		if !ok {
			return []bluelist.Record{}, nil
		}
		args = append(args, id)
		query += fmt.Sprintf(" AND id = $%d", len(args))

		// Rows come back in canonical form, so match against that.
		canonical := make(bluelist.Filter, len(filter))
		for k, v := range filter {
			canonical[k] = v
		}
		canonical[bluelist.IDField] = id.String()
		filter = canonical
	}

	conditions := filter.FieldConditions()
	if len(conditions) > 0 {
		contains, err := internal.EncodeFields(conditions)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
		args = append(args, string(contains))
		query += fmt.Sprintf(" AND fields @> $%d::jsonb", len(args))
	}

	query += " ORDER BY created_at, id"
	if limit > 0 && len(conditions) == 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	out := []bluelist.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}

		var more bool
		if out, more = internal.Collect(out, rec, filter, limit); !more {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find: rows: %w", err)
	}

	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (bluelist.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return bluelist.Record{}, bluelist.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT id, type, fields FROM %s WHERE id = $1`, r.tableName)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bluelist.Record{}, bluelist.ErrNotFound
		}
		return bluelist.Record{}, fmt.Errorf("get: %w", err)
	}

	return rec, nil
}

func (r *Repo) Insert(ctx context.Context, typeName string, fields map[string]any) (bluelist.Record, error) {
	data, err := internal.EncodeFields(fields)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("insert: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (type, fields)
		VALUES ($1, $2::jsonb)
		RETURNING id, type, fields
	`, r.tableName)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, typeName, string(data)))
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("insert: %w", err)
	}

	return rec, nil
}

func (r *Repo) Update(ctx context.Context, rec bluelist.Record) (bluelist.Record, error) {
	uid, err := uuid.Parse(rec.ID)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update %s: %w", rec.ID, bluelist.ErrNotFound)
	}

	data, err := internal.EncodeFields(rec.Fields)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET fields = $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING id, type, fields
	`, r.tableName)

	updated, err := scanRecord(r.pool.QueryRow(ctx, query, uid, string(data)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bluelist.Record{}, fmt.Errorf("update %s: %w", rec.ID, bluelist.ErrNotFound)
		}
		return bluelist.Record{}, fmt.Errorf("update: %w", err)
	}

	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	result, err := r.pool.Exec(ctx, query, uid)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func parseID(filter bluelist.Filter) (uuid.UUID, bool) {
	id, ok := filter.IDCondition()
	if !ok {
		return uuid.UUID{}, false
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, false
	}
	return uid, true
}

func scanRecord(row pgx.Row) (bluelist.Record, error) {
	var id uuid.UUID
	var rec bluelist.Record
	var fields []byte

	if err := row.Scan(&id, &rec.Type, &fields); err != nil {
		return bluelist.Record{}, err
	}
	rec.ID = id.String()

	var err error
	rec.Fields, err = internal.DecodeFields(fields)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}

	return rec, nil
}
