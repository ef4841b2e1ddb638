// Package hasher provides the pluggable hash policy used for shard routing
// and in-shard lookup.
//
// Hashing is a performance concern, never a correctness boundary: the table
// always falls back to full string equality, so a poor or adversarial hash
// distribution degrades speed, not results.
package hasher

// Hasher maps string content to a 64-bit hash.
//
// Implementations must be stateless after construction and safe for
// concurrent use. Hash and HashBytes must agree for equal content:
// Hash(s) == HashBytes([]byte(s)) for every s.
type Hasher interface {
	Hash(s string) uint64
	HashBytes(b []byte) uint64
	Name() string
}

// ByName returns a built-in hasher by its stable name.
//
// Snapshot headers store the hasher name so a table can be rebuilt with the
// policy that produced it. Custom hashers are not resolvable by name; supply
// them explicitly when loading.
func ByName(name string) (Hasher, bool) {
	switch name {
	case "fnv1a":
		return NewFNV(), true
	case "maphash":
		return NewMapHash(), true
	default:
		return nil, false
	}
}

// Default is the hasher used when none is configured.
//
// It is deterministic: equal content hashes identically across runs and
// processes, so shard routing and symbol values are reproducible.
var Default Hasher = NewFNV()
