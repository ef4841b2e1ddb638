package cache

import "context"

// ObjectCache is a byte-oriented cache for immutable objects, keyed by
// object name. Returned slices must be treated as read-only.
type ObjectCache interface {
	// Get returns a cached object. ok=false if missing.
	Get(ctx context.Context, name string) (b []byte, ok bool)
	// Set caches an object. Implementations may copy or retain; caller must
	// treat b as immutable.
	Set(ctx context.Context, name string, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(name string) bool)
	// Close releases any resources.
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
