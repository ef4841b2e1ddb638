// Package blobstore provides storage abstraction for published snapshots.
//
// Store is the interface for reading and writing snapshot and manifest
// objects. CommitStore is the companion interface that tracks which
// published version is current, with compare-and-swap semantics so
// concurrent publishers cannot silently overwrite each other.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore / LocalCommitStore: Local filesystem
//   - MemoryStore / MemoryCommitStore: In-memory, for tests
//   - s3.Store: Amazon S3, with s3.DDBCommitStore for commits
//   - minio.Store: MinIO and other S3-compatible storage
//   - CachingStore: read-through cache in front of any Store
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error         // Atomic write
//	    Get(ctx, name) ([]byte, error)     // Whole-object read
//	    Delete(ctx, name) error
//	    Exists(ctx, name) (bool, error)
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
