package bluelist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ItemType is the resource type served by the item routes.
const ItemType = "Item"

// IDField is the JSON member carrying a record's identifier.
const IDField = "id"

// Record is a stored object: a store-assigned identifier plus an opaque payload.
//
// Its JSON form is the payload object with the identifier added under "id":
//
//	{"name": "sensor1", "id": "3f6c..."}
type Record struct {
	ID     string
	Type   string
	Fields map[string]any
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.ID != "" {
		out[IDField] = r.ID
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if id, ok := fields[IDField].(string); ok {
		r.ID = id
	}
	delete(fields, IDField)
	r.Fields = fields
	return nil
}

// Filter selects records by equality. The "id" key matches the record
// identifier, every other key matches a top-level payload field.
type Filter map[string]any

// FindOptions limits a Find. A zero Limit means no limit.
type FindOptions struct {
	Limit int
}

// DeleteResult reports the outcome of a delete the backend accepted.
type DeleteResult struct {
	deleted bool
}

// NewDeleteResult wraps the backend's deletion flag.
func NewDeleteResult(deleted bool) DeleteResult {
	return DeleteResult{deleted: deleted}
}

// IsDeleted reports whether the backend confirmed the record is gone.
func (d DeleteResult) IsDeleted() bool {
	return d.deleted
}

// Tables holds configurable table names for record storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Items string `mapstructure:"items"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Items == "" {
		return errors.New("validate tables: items table name cannot be empty")
	}

	if !IsValidTableName(t.Items) {
		return fmt.Errorf("validate tables: invalid items table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Items)
	}

	return nil
}
