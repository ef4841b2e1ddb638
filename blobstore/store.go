package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for storing immutable snapshot objects.
//
// Objects are written whole and read whole. A name is an opaque
// slash-separated key; Put to an existing name replaces the object.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes an object atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads an entire object.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
	// Exists reports whether an object exists.
	Exists(ctx context.Context, name string) (bool, error)
	// List returns all object names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
