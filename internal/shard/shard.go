// Package shard implements one independently locked partition of an
// interning table: a hash-indexed lookup structure over local indices plus an
// append-only sequence of interned strings.
//
// The lookup structure stores indices into the string sequence, never the
// strings themselves, so each distinct string is stored exactly once. The
// sequence is append-only and entries are never rewritten, which is what lets
// callers hand out interned strings after the shard lock is released.
package shard

import (
	"errors"
	"strings"
	"sync"
)

// ErrFull reports that a shard cannot represent another local index.
var ErrFull = errors.New("shard full")

const minTableSize = 16

// Shard is a single lock-protected partition.
//
// The zero value is not usable; construct with New.
type Shard struct {
	mu sync.Mutex

	// hash recomputes the hash of a stored string when the lookup table
	// grows. It must match the hash the caller routes with.
	hash func(string) uint64

	// slots is an open-addressing table with linear probing. A slot holds
	// local index + 1; 0 marks an empty slot.
	slots []uint32
	mask  uint32

	// strs is the append-only string sequence; strs[i] never changes once
	// written.
	strs []string
}

// New returns an empty shard that rehashes stored strings with hash.
func New(hash func(string) uint64) *Shard {
	s := new(Shard)
	s.Init(hash)
	return s
}

// Init prepares a zero shard in place. Tables embed shards in a padded array
// and initialize them without copying the mutex.
func (s *Shard) Init(hash func(string) uint64) {
	s.hash = hash
}

// Intern returns the local index of key, inserting a copy of it if absent.
// isNew reports whether this call created the entry. h must be the hash of
// key under the shard's hash function.
//
// Returns ErrFull when the new entry would need a local index >= maxIdx.
func (s *Shard) Intern(h uint64, key string, maxIdx uint32) (idx uint32, isNew bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) > 0 {
		i := uint32(h>>32) & s.mask
		for {
			v := s.slots[i]
			if v == 0 {
				break
			}
			if s.strs[v-1] == key {
				return v - 1, false, nil
			}
			i = (i + 1) & s.mask
		}
	}

	return s.insert(h, strings.Clone(key), maxIdx)
}

// InternBytes is Intern for byte-slice content. The bytes are copied into a
// fresh string only when the entry is new.
func (s *Shard) InternBytes(h uint64, key []byte, maxIdx uint32) (idx uint32, isNew bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) > 0 {
		i := uint32(h>>32) & s.mask
		for {
			v := s.slots[i]
			if v == 0 {
				break
			}
			if s.strs[v-1] == string(key) {
				return v - 1, false, nil
			}
			i = (i + 1) & s.mask
		}
	}

	return s.insert(h, string(key), maxIdx)
}

// insert appends stored and records its index in the lookup table, growing
// the table first when the load factor demands it. Caller holds the lock;
// stored must already be an independent copy.
func (s *Shard) insert(h uint64, stored string, maxIdx uint32) (uint32, bool, error) {
	if uint64(len(s.strs)) >= uint64(maxIdx) {
		return 0, false, ErrFull
	}

	if 4*(len(s.strs)+1) > 3*len(s.slots) {
		s.grow()
	}

	idx := uint32(len(s.strs))
	s.strs = append(s.strs, stored)

	i := uint32(h>>32) & s.mask
	for s.slots[i] != 0 {
		i = (i + 1) & s.mask
	}
	s.slots[i] = idx + 1

	return idx, true, nil
}

// grow doubles the lookup table and reinserts every index, keyed by the
// recomputed hash of its stored string.
func (s *Shard) grow() {
	n := 2 * len(s.slots)
	if n == 0 {
		n = minTableSize
	}
	slots := make([]uint32, n)
	mask := uint32(n - 1)

	for i, str := range s.strs {
		j := uint32(s.hash(str)>>32) & mask
		for slots[j] != 0 {
			j = (j + 1) & mask
		}
		slots[j] = uint32(i) + 1
	}

	s.slots, s.mask = slots, mask
}

// Lookup returns the local index of key without inserting it.
func (s *Shard) Lookup(h uint64, key string) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.slots) == 0 {
		return 0, false
	}
	i := uint32(h>>32) & s.mask
	for {
		v := s.slots[i]
		if v == 0 {
			return 0, false
		}
		if s.strs[v-1] == key {
			return v - 1, true
		}
		i = (i + 1) & s.mask
	}
}

// Resolve returns the string stored at idx.
//
// The returned string stays valid after the shard lock is released: entries
// are append-only and never rewritten, so only the slice of string headers
// may move, never the character data.
func (s *Shard) Resolve(idx uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(idx) >= uint64(len(s.strs)) {
		return "", false
	}
	return s.strs[idx], true
}

// Len returns the number of interned strings.
func (s *Shard) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.strs)
}

// View returns a point-in-time view of the interned strings ordered by local
// index. The returned slice must not be modified; it stays coherent while
// further interns proceed because entries are append-only.
func (s *Shard) View() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strs
}
