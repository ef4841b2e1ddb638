package symgo

// Symbol is a compact, copyable handle for an interned string.
//
// Two symbols from the same table are equal exactly when their string
// content is equal, so symbols compare, hash, and work as map keys in O(1)
// without touching the string data. The ordering given by < is total but
// arbitrary; it carries no lexical or insertion meaning.
//
// # Encoding
//
// A Symbol packs [ShardIndex:b bits][LocalIndex+1:32-b bits] into a uint32,
// where b is the minimal bit-width covering the table's shard count. Storing
// the local index plus one keeps every produced value non-zero, so the zero
// Symbol is never valid and can represent "no symbol". The bit split is an
// implementation detail of the owning table: it changes with the shard count
// and is not stable across differently configured tables or processes.
type Symbol uint32

// Valid reports whether s could have been produced by a table. The zero
// value is not valid.
func (s Symbol) Valid() bool { return s != 0 }

// Raw returns the backing non-zero integer, useful for embedding symbols in
// other compact structures. The value is only meaningful to the table that
// produced it.
func (s Symbol) Raw() uint32 { return uint32(s) }

// SymbolFromRaw reconstructs a Symbol from a raw value obtained via Raw.
// It reports false for zero, which no table ever produces.
func SymbolFromRaw(raw uint32) (Symbol, bool) {
	if raw == 0 {
		return 0, false
	}
	return Symbol(raw), true
}
