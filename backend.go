package bluelist

import (
	"context"
	"fmt"
)

// Backend is the per-request facade over the backend data service.
//
// Every operation is asynchronous: it returns immediately with a Future that
// settles exactly once with a value or an error. A Backend is cheap to build
// and is created fresh for each inbound request, so handles never leak
// between requests.
type Backend interface {
	// Query returns a query handle bound to typeName.
	Query(typeName string) Query
	// Object returns an unsaved object of typeName holding a copy of payload.
	Object(typeName string, payload map[string]any) Object
	// ObjectByID resolves a handle to an existing record. The Future fails
	// with ErrNotFound when no record has the identifier.
	ObjectByID(ctx context.Context, id string) *Future[Object]
}

// Query searches records of one type.
type Query interface {
	Find(ctx context.Context, filter Filter, opts *FindOptions) *Future[[]Record]
}

// Object is a handle to a single record, saved or not.
type Object interface {
	// ID returns the record identifier, empty until the object is saved.
	ID() string
	// Set merges payload into the in-memory copy. It performs no I/O.
	Set(payload map[string]any)
	// Save persists the in-memory copy, inserting or updating as needed.
	Save(ctx context.Context) *Future[Record]
	// Delete removes the record.
	Delete(ctx context.Context) *Future[DeleteResult]
}

// NewBackend returns a facade over store.
func NewBackend(store DocumentStore) Backend {
	return &facade{store: store}
}

type facade struct {
	store DocumentStore
}

func (f *facade) Query(typeName string) Query {
	return &query{store: f.store, typeName: typeName}
}

func (f *facade) Object(typeName string, payload map[string]any) Object {
	return &object{store: f.store, typeName: typeName, fields: StripID(payload)}
}

func (f *facade) ObjectByID(ctx context.Context, id string) *Future[Object] {
	if id == "" {
		return Failed[Object](fmt.Errorf("object by id: %w: id cannot be empty", ErrInvalidInput))
	}
	return Go(func() (Object, error) {
		rec, err := f.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("object by id %s: %w", id, err)
		}
		return &object{store: f.store, typeName: rec.Type, id: rec.ID, fields: CloneFields(rec.Fields)}, nil
	})
}

type query struct {
	store    DocumentStore
	typeName string
}

func (q *query) Find(ctx context.Context, filter Filter, opts *FindOptions) *Future[[]Record] {
	limit := 0
	if opts != nil {
		if opts.Limit < 0 {
			return Failed[[]Record](fmt.Errorf("find %s: %w: negative limit", q.typeName, ErrInvalidInput))
		}
		limit = opts.Limit
	}
	return Go(func() ([]Record, error) {
		records, err := q.store.Find(ctx, q.typeName, filter, limit)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", q.typeName, err)
		}
		if records == nil {
			records = []Record{}
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		return records, nil
	})
}

type object struct {
	store    DocumentStore
	typeName string
	id       string
	fields   map[string]any
}

func (o *object) ID() string {
	return o.id
}

func (o *object) Set(payload map[string]any) {
	o.fields = MergeFields(o.fields, payload)
}

func (o *object) Save(ctx context.Context) *Future[Record] {
	fields := CloneFields(o.fields)
	return Go(func() (Record, error) {
		if o.id == "" {
			rec, err := o.store.Insert(ctx, o.typeName, fields)
			if err != nil {
				return Record{}, fmt.Errorf("save %s: %w", o.typeName, err)
			}
			o.id = rec.ID
			return rec, nil
		}

		rec, err := o.store.Update(ctx, Record{ID: o.id, Type: o.typeName, Fields: fields})
		if err != nil {
			return Record{}, fmt.Errorf("save %s %s: %w", o.typeName, o.id, err)
		}
		return rec, nil
	})
}

func (o *object) Delete(ctx context.Context) *Future[DeleteResult] {
	if o.id == "" {
		return Failed[DeleteResult](fmt.Errorf("delete %s: %w: object was never saved", o.typeName, ErrInvalidInput))
	}
	return Go(func() (DeleteResult, error) {
		deleted, err := o.store.Delete(ctx, o.id)
		if err != nil {
			return DeleteResult{}, fmt.Errorf("delete %s %s: %w", o.typeName, o.id, err)
		}
		return NewDeleteResult(deleted), nil
	})
}
