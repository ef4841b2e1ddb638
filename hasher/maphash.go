package hasher

import "hash/maphash"

// MapHash hashes with the runtime's string hash under a per-process random
// seed.
//
// Routing differs from process to process, so snapshots written under this
// policy round-trip their content but not their raw symbol values. Use it
// when inputs may be adversarial and nothing is persisted.
type MapHash struct {
	seed maphash.Seed
}

// NewMapHash returns a MapHash with a fresh random seed.
func NewMapHash() *MapHash {
	return &MapHash{seed: maphash.MakeSeed()}
}

// Hash returns the seeded hash of s.
func (m *MapHash) Hash(s string) uint64 {
	return maphash.String(m.seed, s)
}

// HashBytes returns the seeded hash of b.
func (m *MapHash) HashBytes(b []byte) uint64 {
	return maphash.Bytes(m.seed, b)
}

// Name returns the unique name of the hasher ("maphash").
func (m *MapHash) Name() string { return "maphash" }
