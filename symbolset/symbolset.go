// Package symbolset provides compressed sets of interned symbols backed by
// 32-bit Roaring Bitmaps.
//
// A Set stores raw symbol values, so membership tests, unions, and
// intersections run on the compressed form without touching string data.
// Raw values are only meaningful to the table that produced them: a
// serialized set pairs with a snapshot of that table, and the two travel
// together.
package symbolset

import (
	"io"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/symgo"
)

// Set is a compressed set of symbols.
//
// Set is not safe for concurrent use. Guard it externally when shared
// between goroutines.
type Set struct {
	rb *roaring.Bitmap
}

// New creates a new empty set.
func New() *Set {
	return &Set{
		rb: roaring.New(),
	}
}

// Of creates a set holding the given symbols.
func Of(syms ...symgo.Symbol) *Set {
	s := New()
	s.AddMany(syms)
	return s
}

// Add inserts sym into the set. The zero Symbol is never produced by a
// table and is ignored.
func (s *Set) Add(sym symgo.Symbol) {
	if !sym.Valid() {
		return
	}
	s.rb.Add(sym.Raw())
}

// AddMany inserts a batch of symbols in one pass.
func (s *Set) AddMany(syms []symgo.Symbol) {
	raw := make([]uint32, 0, len(syms))
	for _, sym := range syms {
		if sym.Valid() {
			raw = append(raw, sym.Raw())
		}
	}
	s.rb.AddMany(raw)
}

// Remove removes sym from the set.
func (s *Set) Remove(sym symgo.Symbol) {
	s.rb.Remove(sym.Raw())
}

// Contains reports whether sym is in the set.
func (s *Set) Contains(sym symgo.Symbol) bool {
	return sym.Valid() && s.rb.Contains(sym.Raw())
}

// Len returns the number of symbols in the set.
func (s *Set) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set has no symbols.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{
		rb: s.rb.Clone(),
	}
}

// Clear removes all symbols from the set.
func (s *Set) Clear() {
	s.rb.Clear()
}

// Union adds every symbol of other to s.
func (s *Set) Union(other *Set) {
	s.rb.Or(other.rb)
}

// Intersect keeps only the symbols present in both s and other.
func (s *Set) Intersect(other *Set) {
	s.rb.And(other.rb)
}

// Difference removes every symbol of other from s.
func (s *Set) Difference(other *Set) {
	s.rb.AndNot(other.rb)
}

// Union computes the union of two sets into a new set.
func Union(a, b *Set) *Set {
	return &Set{rb: roaring.Or(a.rb, b.rb)}
}

// Intersect computes the intersection of two sets into a new set.
func Intersect(a, b *Set) *Set {
	return &Set{rb: roaring.And(a.rb, b.rb)}
}

// Difference computes the symbols of a that are not in b into a new set.
func Difference(a, b *Set) *Set {
	return &Set{rb: roaring.AndNot(a.rb, b.rb)}
}

// Iterator returns an iterator over the symbols in ascending raw order.
func (s *Set) Iterator() iter.Seq[symgo.Symbol] {
	return func(yield func(symgo.Symbol) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			sym, ok := symgo.SymbolFromRaw(it.Next())
			if !ok {
				continue
			}
			if !yield(sym) {
				return
			}
		}
	}
}

// Symbols returns the symbols in the set in ascending raw order.
func (s *Set) Symbols() []symgo.Symbol {
	raw := s.rb.ToArray()
	syms := make([]symgo.Symbol, 0, len(raw))
	for _, r := range raw {
		if sym, ok := symgo.SymbolFromRaw(r); ok {
			syms = append(syms, sym)
		}
	}
	return syms
}

// WriteTo writes the set to w in the standard Roaring interchange format.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	return s.rb.WriteTo(w)
}

// ReadFrom replaces the contents of s with a set read from r. The stream
// carries raw values only; pair it with a snapshot of the table the
// symbols came from.
func (s *Set) ReadFrom(r io.Reader) (int64, error) {
	return s.rb.ReadFrom(r)
}

// GetSizeInBytes returns an estimate of the in-memory size of the set in
// bytes.
func (s *Set) GetSizeInBytes() uint64 {
	return s.rb.GetSizeInBytes()
}
