package cv

import "context"

// Store is the single keyed table every record kind lives in.
// Lookups of a missing key return (nil, nil).
// Implementations need not make multi-record sequences atomic; only
// Replace is expected to run as one unit.
type Store interface {
	// Get returns the record stored under key, or nil if there is none.
	Get(ctx context.Context, key string) (*Record, error)

	// Put inserts or overwrites the record under rec.Key.
	Put(ctx context.Context, rec *Record) error

	// Delete removes the record under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetAll returns every record ordered by key.
	GetAll(ctx context.Context) ([]*Record, error)

	// GetAllKeys returns every key in order.
	GetAllKeys(ctx context.Context) ([]string, error)

	// ListByType returns all records carrying the given type tag, ordered by key.
	ListByType(ctx context.Context, typ string) ([]*Record, error)

	// ListByKeyPrefix returns all records whose key starts with prefix, ordered by key.
	ListByKeyPrefix(ctx context.Context, prefix string) ([]*Record, error)

	// Replace clears the table and inserts recs.
	Replace(ctx context.Context, recs []*Record) error

	// Close releases the underlying handle.
	Close() error
}
