// Package cache provides LRU caching for snapshot objects.
//
// The ShardedLRUObjectCache stores recently fetched objects from a blob
// store. It uses 64-way sharding for high concurrency: shard selection is
// a seeded maphash of the object name, and each shard holds its own mutex,
// so parallel readers of different objects rarely contend.
//
// Memory use can be bounded twice: each cache has a byte capacity with LRU
// eviction, and an optional resource.Controller enforces a limit shared
// with everything else that accounts through it.
package cache
