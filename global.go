package symgo

import (
	"sync"
	"sync/atomic"
)

var (
	globalOnce  sync.Once
	globalTable *SymbolTable
)

// Global returns the process-wide SymbolTable backing GlobalSymbol.
//
// It is created with default configuration on first use, exactly once, and
// lives until process exit. Snapshot the global table through this accessor
// when its contents need to outlive the process.
func Global() *SymbolTable {
	globalOnce.Do(func() {
		globalTable = Table().MustBuild()
	})
	return globalTable
}

// GlobalSymbol is a Symbol interned into the process-wide table.
//
// Because the table is never torn down, the resolved string is valid until
// process exit. Equality, ordering, and map-key hashing delegate to the
// underlying Symbol. The zero value is not a valid symbol.
//
// GlobalSymbol serializes as its string content, never as raw handle bits;
// handle values are not stable across processes. It implements
// encoding.TextMarshaler and TextUnmarshaler, which also gives it the
// expected JSON form:
//
//	type Token struct {
//	    Kind symgo.GlobalSymbol `json:"kind"`
//	}
type GlobalSymbol Symbol

// Intern interns s into the process-wide table.
func Intern(s string) GlobalSymbol {
	return GlobalSymbol(Global().Intern(s))
}

// InternBytes interns byte-slice content into the process-wide table.
func InternBytes(b []byte) GlobalSymbol {
	return GlobalSymbol(Global().InternBytes(b))
}

// Symbol returns the underlying table-level Symbol.
func (g GlobalSymbol) Symbol() Symbol { return Symbol(g) }

// Valid reports whether g was produced by interning. The zero value is not
// valid.
func (g GlobalSymbol) Valid() bool { return g != 0 }

// String returns the interned string content, valid until process exit.
// The zero value resolves to "".
func (g GlobalSymbol) String() string {
	if g == 0 {
		return ""
	}
	return Global().Resolve(Symbol(g))
}

// MarshalText encodes the symbol as its string content.
func (g GlobalSymbol) MarshalText() ([]byte, error) {
	if g == 0 {
		return nil, &ErrInvalidSymbol{Symbol: Symbol(g)}
	}
	return []byte(Global().Resolve(Symbol(g))), nil
}

// UnmarshalText interns the incoming content. Round trips restore an equal
// symbol even across processes, since the wire form is the string itself.
func (g *GlobalSymbol) UnmarshalText(text []byte) error {
	*g = GlobalSymbol(Global().InternBytes(text))
	return nil
}

// LazySymbol caches the global handle for a fixed string after the first
// use, so hot call sites skip the shard lock:
//
//	var kwReturn = symgo.NewLazySymbol("return")
//
//	func classify(tok string) bool {
//	    return symgo.Intern(tok) == kwReturn.Symbol()
//	}
//
// Racing first uses are fine: interning is idempotent, so every racer caches
// the same handle.
type LazySymbol struct {
	value string
	raw   atomic.Uint32
}

// NewLazySymbol returns a LazySymbol for value without interning it yet.
func NewLazySymbol(value string) *LazySymbol {
	return &LazySymbol{value: value}
}

// Symbol returns the cached global handle, interning value on first use.
func (l *LazySymbol) Symbol() GlobalSymbol {
	if raw := l.raw.Load(); raw != 0 {
		return GlobalSymbol(raw)
	}
	g := Intern(l.value)
	l.raw.Store(uint32(g))
	return g
}

// String returns the fixed string value.
func (l *LazySymbol) String() string { return l.value }
