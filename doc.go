// Package symgo provides a fast concurrent string interner for Go.
//
// Symgo maps strings to compact 32-bit handles (symbols) and back. Equal
// content always yields an equal symbol, each distinct string is stored
// exactly once, and resolved strings stay valid for the life of the table.
// It is built for highly contended workloads such as parallel tokenization,
// where a single mutex around one map becomes the bottleneck.
//
// # Quick Start
//
// Table-scoped interning:
//
//	st, _ := symgo.New()
//	red := st.Intern("red")
//	st.Intern("red") == red        // always true
//	st.Resolve(red)                // "red"
//
// Process-wide interning:
//
//	kind := symgo.Intern("identifier")
//	kind.String()                  // "identifier", valid until process exit
//
// Tuning via the fluent builder:
//
//	st := symgo.Table().
//	    Shards(64).
//	    Hasher(hasher.NewMapHash()).
//	    MustBuild()
//
// # Key Features
//
//   - Lock sharding: strings partition across independently locked shards
//     by hash (default 16), so unrelated interns proceed in parallel
//   - Compact handles: a symbol is one non-zero uint32 packing shard and
//     local index; it compares, hashes, and embeds in other structures
//     without touching string data
//   - Pluggable hashing: deterministic seeded default for reproducible
//     routing, per-process random maphash for adversarial inputs
//   - Snapshots: checksummed binary format with optional lz4/zstd block
//     compression, restorable to an identical table
//   - Versioned publishing to blob storage (local, S3, MinIO) with an
//     atomic latest-version pointer
//   - Roaring-bitmap symbol sets for cheap membership and set algebra
//
// # Capacity
//
// Shard count is a capacity trade-off: the 32-bit handle splits into shard
// bits and local-index bits, so doubling the shards halves the strings each
// shard can hold. Exceeding a shard's local index space panics with
// *ErrShardFull; size the shard count for the expected cardinality up front.
// Interned strings are never evicted.
package symgo
