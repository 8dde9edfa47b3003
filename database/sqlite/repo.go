// Package sqlite implements bluelist.DocumentStore on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/database/internal"
)

// Repo stores records as JSON text rows in a single table.
type Repo struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

// NewRepo returns a store over db. The table must already be migrated.
func NewRepo(db *sql.DB, tables bluelist.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(tables.Items), now: time.Now}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Find(ctx context.Context, typeName string, filter bluelist.Filter, limit int) ([]bluelist.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("find: %w: negative limit", bluelist.ErrInvalidInput)
	}

	conditions := []string{"type = ?"}
	args := []any{typeName}

	if id, ok := filter.IDCondition(); ok {
		conditions = append(conditions, "id = ?")
		args = append(args, id)
	} else if _, pinned := filter[bluelist.IDField]; pinned {
		// a non-string identifier can never match
		return []bluelist.Record{}, nil
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, type, fields FROM %s WHERE %s ORDER BY created_at, rowid`,
		r.tableName, strings.Join(conditions, " AND "))

	if limit > 0 && len(filter.FieldConditions()) == 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	query := fmt.Sprintf(`SELECT id, type, fields FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	id := uuid.NewString()
	now := internal.FormatTime(r.now())

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, type, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`, r.tableName)

	if _, err := r.db.ExecContext(ctx, query, id, typeName, string(data), now, now); err != nil {
		return bluelist.Record{}, fmt.Errorf("insert: %w", err)
	}

	return bluelist.Record{ID: id, Type: typeName, Fields: bluelist.StripID(fields)}, nil
}

func (r *Repo) Update(ctx context.Context, rec bluelist.Record) (bluelist.Record, error) {
	data, err := internal.EncodeFields(rec.Fields)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET fields = ?, updated_at = ? WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, string(data), internal.FormatTime(r.now()), rec.ID)
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("update: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return bluelist.Record{}, fmt.Errorf("update %s: %w", rec.ID, bluelist.ErrNotFound)
	}

	return r.Get(ctx, rec.ID)
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (bluelist.Record, error) {
	var rec bluelist.Record
	var fields string

	if err := s.Scan(&rec.ID, &rec.Type, &fields); err != nil {
		return bluelist.Record{}, err
	}

	var err error
	rec.Fields, err = internal.DecodeFields([]byte(fields))
	if err != nil {
		return bluelist.Record{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}

	return rec, nil
}
