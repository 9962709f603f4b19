package docstore

import "context"

// Store is a generic document database: named collections of JSON-like records
// addressed by id.
type Store interface {
	// Get returns nil, nil when the document does not exist.
	Get(ctx context.Context, collection, id string) (Record, error)
	// Put creates or replaces the whole document.
	Put(ctx context.Context, collection, id string, rec Record) error
	// Update deep-merges partial into an existing document. Nested maps merge,
	// arrays and scalars replace. Returns ErrNotFound when the document is missing.
	Update(ctx context.Context, collection, id string, partial Record) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Record, error)
}
