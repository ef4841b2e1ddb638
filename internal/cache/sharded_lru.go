package cache

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/hupe1980/symgo/resource"
)

const numShards = 64

// ShardedLRUObjectCache is a sharded LRU cache for high-concurrency
// workloads. It distributes entries across 64 shards to reduce lock
// contention.
type ShardedLRUObjectCache struct {
	shards [numShards]*LRUObjectCache
	seed   maphash.Seed
}

// NewShardedLRUObjectCache creates a new sharded LRU cache.
// The capacity is divided evenly across all shards.
func NewShardedLRUObjectCache(capacity int64, rc *resource.Controller) *ShardedLRUObjectCache {
	shardCapacity := capacity / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &ShardedLRUObjectCache{
		seed: maphash.MakeSeed(),
	}
	for i := range numShards {
		s.shards[i] = NewLRUObjectCache(shardCapacity, rc)
	}
	return s
}

func (s *ShardedLRUObjectCache) shard(name string) *LRUObjectCache {
	idx := maphash.String(s.seed, name) % numShards
	return s.shards[idx]
}

// Get returns a cached object.
func (s *ShardedLRUObjectCache) Get(ctx context.Context, name string) ([]byte, bool) {
	return s.shard(name).Get(ctx, name)
}

// Set caches an object.
func (s *ShardedLRUObjectCache) Set(ctx context.Context, name string, b []byte) {
	s.shard(name).Set(ctx, name, b)
}

// Invalidate removes entries matching the predicate.
// This iterates all shards, which is expensive but rare.
func (s *ShardedLRUObjectCache) Invalidate(predicate func(name string) bool) {
	var wg sync.WaitGroup
	wg.Add(numShards)

	for i := range numShards {
		go func(shard *LRUObjectCache) {
			defer wg.Done()
			shard.Invalidate(predicate)
		}(s.shards[i])
	}

	wg.Wait()
}

// Close closes all shards.
func (s *ShardedLRUObjectCache) Close() error {
	for i := range numShards {
		if err := s.shards[i].Close(); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns aggregated hit/miss statistics.
func (s *ShardedLRUObjectCache) Stats() (hits, misses int64) {
	for i := range numShards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the total size across all shards.
func (s *ShardedLRUObjectCache) Size() int64 {
	var total int64
	for i := range numShards {
		total += s.shards[i].Size()
	}
	return total
}
