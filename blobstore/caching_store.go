package blobstore

import (
	"context"

	"github.com/hupe1980/symgo/internal/cache"
	"github.com/hupe1980/symgo/resource"
)

// CachingStore wraps a Store with a read-through object cache.
//
// Snapshot and manifest objects are immutable once written, so a cache hit
// never serves stale bytes; Put and Delete still invalidate the name in
// case a key is reused. Cached slices are shared: callers must treat the
// result of Get as read-only, which every reader in this module does.
type CachingStore struct {
	inner Store
	cache cache.ObjectCache
}

// NewCachingStore creates a CachingStore holding at most capacity bytes.
// If rc is non-nil, cached bytes are accounted against its memory limit.
func NewCachingStore(inner Store, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewShardedLRUObjectCache(capacity, rc),
	}
}

// Put writes an object and invalidates any cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Invalidate(func(cached string) bool { return cached == name })
	return s.inner.Put(ctx, name, data)
}

// Get reads an object, serving repeated reads from memory.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(ctx, name); ok {
		return data, nil
	}

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, name, data)
	return data, nil
}

// Delete removes an object and invalidates any cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Invalidate(func(cached string) bool { return cached == name })
	return s.inner.Delete(ctx, name)
}

// Exists reports whether an object exists.
func (s *CachingStore) Exists(ctx context.Context, name string) (bool, error) {
	if _, ok := s.cache.Get(ctx, name); ok {
		return true, nil
	}
	return s.inner.Exists(ctx, name)
}

// List returns all object names with the given prefix, sorted.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// CacheStats returns hit/miss counters for the underlying cache.
func (s *CachingStore) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// Close releases the cache.
func (s *CachingStore) Close() error {
	return s.cache.Close()
}
