package symgo

import (
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/symgo/hasher"
	"github.com/hupe1980/symgo/internal/shard"
)

const (
	// DefaultShardCount is the number of shards used when none is configured.
	DefaultShardCount = 16

	// MaxShardCount is the largest supported shard count. Ten shard bits is
	// the most the 32-bit symbol encoding gives up to routing.
	MaxShardCount = 1024
)

// SymbolTable is a concurrent string interner.
//
// Intern maps equal string content to an equal Symbol, storing each distinct
// string exactly once; Resolve maps a Symbol back to its string. Strings are
// partitioned across independently locked shards by hash, so goroutines
// interning unrelated strings rarely contend.
//
// The table is append-only: interned strings are never evicted, moved, or
// mutated while the table is alive. That invariant is what lets Resolve
// return strings that remain valid outside any lock.
//
// All methods are safe for concurrent use.
type SymbolTable struct {
	shards    []paddedShard
	warned    []atomic.Bool
	hasher    hasher.Hasher
	numShards uint64
	localBits uint32
	// maxIdx is the exclusive bound on local indices; it doubles as the
	// mask for the local-index bits of a symbol.
	maxIdx  uint32
	warnAt  uint32
	logger  *Logger
	metrics MetricsCollector
}

// paddedShard keeps neighboring shards on separate cache lines so that one
// shard's lock traffic does not false-share with the next.
type paddedShard struct {
	shard.Shard
	_ cpu.CacheLinePad
}

// New creates a SymbolTable.
//
// Defaults: 16 shards, the deterministic seeded hash policy, no logging, no
// metrics.
func New(optFns ...Option) (*SymbolTable, error) {
	opts := applyOptions(optFns)

	if opts.numShards < 1 || opts.numShards > MaxShardCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShardCount, opts.numShards)
	}

	shardBits := uint32(bits.Len32(uint32(opts.numShards - 1)))
	maxIdx := uint32(math.MaxUint32 >> shardBits)

	t := &SymbolTable{
		shards:    make([]paddedShard, opts.numShards),
		warned:    make([]atomic.Bool, opts.numShards),
		hasher:    opts.hasher,
		numShards: uint64(opts.numShards),
		localBits: 32 - shardBits,
		maxIdx:    maxIdx,
		warnAt:    maxIdx - maxIdx/10,
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
	}
	for i := range t.shards {
		t.shards[i].Init(opts.hasher.Hash)
	}

	return t, nil
}

// Intern returns the Symbol for s, interning it on first sight.
//
// Equal content always yields an equal Symbol, from any goroutine at any
// time; distinct content always yields distinct Symbols (hash collisions are
// resolved by full equality comparison, never by hash alone). Empty and
// multi-byte content intern like any other string.
//
// Intern panics with *ErrShardFull when a shard runs out of representable
// local indices. That is a hard ceiling fixed by the shard count, not a
// transient failure; see WithNumShards for the trade-off.
func (t *SymbolTable) Intern(s string) Symbol {
	h := t.hasher.Hash(s)
	si := h % t.numShards

	idx, isNew, err := t.shards[si].Intern(h, s, t.maxIdx)
	if err != nil {
		panic(&ErrShardFull{Shard: int(si), MaxLocal: t.maxIdx, cause: err})
	}

	t.metrics.RecordIntern(isNew)
	if isNew && idx+1 >= t.warnAt {
		t.warnNearCapacity(int(si), idx+1)
	}

	return t.pack(uint32(si), idx)
}

// InternBytes is Intern for byte-slice content, for callers that tokenize
// into []byte. The bytes are copied only when the content is new; b is never
// retained.
func (t *SymbolTable) InternBytes(b []byte) Symbol {
	h := t.hasher.HashBytes(b)
	si := h % t.numShards

	idx, isNew, err := t.shards[si].InternBytes(h, b, t.maxIdx)
	if err != nil {
		panic(&ErrShardFull{Shard: int(si), MaxLocal: t.maxIdx, cause: err})
	}

	t.metrics.RecordIntern(isNew)
	if isNew && idx+1 >= t.warnAt {
		t.warnNearCapacity(int(si), idx+1)
	}

	return t.pack(uint32(si), idx)
}

// intern is the error-returning form used by snapshot loading, where a full
// shard means corrupt input rather than a caller bug.
func (t *SymbolTable) intern(s string) (Symbol, bool, error) {
	h := t.hasher.Hash(s)
	si := h % t.numShards

	idx, isNew, err := t.shards[si].Intern(h, s, t.maxIdx)
	if err != nil {
		return 0, false, err
	}
	t.metrics.RecordIntern(isNew)
	return t.pack(uint32(si), idx), isNew, nil
}

// shardOf returns the shard index encoded in sym.
func (t *SymbolTable) shardOf(sym Symbol) uint32 {
	return uint32(sym) >> t.localBits
}

// Lookup returns the Symbol for s without interning it.
func (t *SymbolTable) Lookup(s string) (Symbol, bool) {
	h := t.hasher.Hash(s)
	si := h % t.numShards

	idx, found := t.shards[si].Lookup(h, s)
	t.metrics.RecordLookup(found)
	if !found {
		return 0, false
	}
	return t.pack(uint32(si), idx), true
}

// Resolve returns the string content of sym.
//
// The returned string stays valid and unchanged for as long as the table is
// alive, even though it is handed out after the shard lock is released:
// interned strings are never moved, mutated, or freed while the table lives.
//
// Resolve panics with *ErrInvalidSymbol if sym was not produced by this
// table. Use Get for a non-panicking variant.
func (t *SymbolTable) Resolve(sym Symbol) string {
	s, ok := t.Get(sym)
	if !ok {
		panic(&ErrInvalidSymbol{Symbol: sym})
	}
	return s
}

// Get returns the string content of sym, reporting false for symbols this
// table never produced.
func (t *SymbolTable) Get(sym Symbol) (string, bool) {
	si, idx, ok := t.unpack(sym)
	if !ok {
		return "", false
	}
	s, ok := t.shards[si].Resolve(idx)
	if !ok {
		return "", false
	}
	t.metrics.RecordResolve()
	return s, true
}

// Len returns the number of distinct interned strings.
func (t *SymbolTable) Len() int {
	n := 0
	for i := range t.shards {
		n += t.shards[i].Len()
	}
	return n
}

// TableStats is a point-in-time summary of table occupancy.
type TableStats struct {
	NumShards int
	Symbols   int
	// MaxShardLen is the occupancy of the fullest shard, the one that
	// decides how close the table is to its capacity ceiling.
	MaxShardLen int
}

// Stats returns aggregated occupancy statistics.
func (t *SymbolTable) Stats() TableStats {
	stats := TableStats{NumShards: int(t.numShards)}
	for i := range t.shards {
		n := t.shards[i].Len()
		stats.Symbols += n
		if n > stats.MaxShardLen {
			stats.MaxShardLen = n
		}
	}
	return stats
}

// HasherName returns the name of the hash function the table was built
// with. Snapshots record it so a load can detect configuration drift.
func (t *SymbolTable) HasherName() string {
	return t.hasher.Name()
}

// ShardLens returns the per-shard string counts, indexed by shard.
func (t *SymbolTable) ShardLens() []int {
	lens := make([]int, len(t.shards))
	for i := range t.shards {
		lens[i] = t.shards[i].Len()
	}
	return lens
}

func (t *SymbolTable) pack(si, idx uint32) Symbol {
	return Symbol(si<<t.localBits | (idx + 1))
}

func (t *SymbolTable) unpack(sym Symbol) (si, idx uint32, ok bool) {
	si = uint32(sym) >> t.localBits
	local := uint32(sym) & t.maxIdx
	if local == 0 || si >= uint32(len(t.shards)) {
		return 0, 0, false
	}
	return si, local - 1, true
}

// warnNearCapacity logs once per shard when it crosses 90% of its local
// index space.
func (t *SymbolTable) warnNearCapacity(si int, used uint32) {
	if t.warned[si].CompareAndSwap(false, true) {
		t.logger.LogNearCapacity(si, used, t.maxIdx)
	}
}
