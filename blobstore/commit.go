package blobstore

import (
	"context"
	"errors"
	"sync"
)

// ErrConcurrentModification is returned when a concurrent write is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// CommitStore tracks which published version is current.
//
// Versions are committed with compare-and-swap semantics: committing a
// version that already exists fails with ErrConcurrentModification, so two
// writers racing to publish version N cannot both win. This is the atomic
// pointer update that plain object stores lack.
type CommitStore interface {
	// Commit records version, pointing at the manifest object named key.
	// Writers derive version from Current plus one; when two race, the
	// loser observes ErrConcurrentModification and retries.
	Commit(ctx context.Context, version uint64, key string) error
	// Current returns the latest committed version and its manifest key.
	// Version 0 with a nil error means nothing has been committed yet.
	Current(ctx context.Context) (version uint64, key string, err error)
	// PruneBelow removes commit records with versions strictly below the
	// given version. The commit log grows by one record per publish, so
	// callers prune it alongside the snapshots the records point at.
	PruneBelow(ctx context.Context, version uint64) error
}

// MemoryCommitStore is an in-memory CommitStore for testing and
// single-process use.
type MemoryCommitStore struct {
	mu       sync.Mutex
	versions map[uint64]string
	latest   uint64
}

// NewMemoryCommitStore creates a new in-memory commit store.
func NewMemoryCommitStore() *MemoryCommitStore {
	return &MemoryCommitStore{
		versions: make(map[uint64]string),
	}
}

// Commit records a version. Fails if the version was already committed.
func (s *MemoryCommitStore) Commit(_ context.Context, version uint64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.versions[version]; exists {
		return ErrConcurrentModification
	}
	s.versions[version] = key
	if version > s.latest {
		s.latest = version
	}
	return nil
}

// Current returns the latest committed version and its key.
func (s *MemoryCommitStore) Current(_ context.Context) (uint64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == 0 {
		return 0, "", nil
	}
	return s.latest, s.versions[s.latest], nil
}

// PruneBelow drops commit records older than version.
func (s *MemoryCommitStore) PruneBelow(_ context.Context, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for v := range s.versions {
		if v < version {
			delete(s.versions, v)
		}
	}
	return nil
}
