package bluelist

import "context"

// DocumentStore is the driver contract of the backend data service. It is
// synchronous; the Backend facade wraps it into asynchronous handles.
//
// Implementations must be safe for concurrent use and own identifier
// assignment. All methods accept a context for cancellation and timeout
// control.
type DocumentStore interface {
	// Find returns records of typeName matching filter, in creation order.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - typeName: The resource type to search
	//   - filter: Equality conditions; nil or empty matches every record
	//   - limit: Maximum number of records to return; 0 means no limit
	//
	// Returns an empty (non-nil) slice when nothing matches.
	Find(ctx context.Context, typeName string, filter Filter, limit int) ([]Record, error)

	// Get retrieves a record by identifier regardless of type.
	//
	// Returns ErrNotFound if no record has the identifier.
	Get(ctx context.Context, id string) (Record, error)

	// Insert stores a new record and returns it with its assigned identifier.
	Insert(ctx context.Context, typeName string, fields map[string]any) (Record, error)

	// Update replaces the payload of an existing record. There is no
	// concurrency check: the last write wins.
	//
	// Returns ErrNotFound if the record no longer exists.
	Update(ctx context.Context, rec Record) (Record, error)

	// Delete removes a record. It reports false, without error, when there
	// was nothing to remove.
	Delete(ctx context.Context, id string) (bool, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
