package symbolset

import (
	"bytes"
	"context"
	"slices"
	"strconv"
	"testing"

	"github.com/hupe1980/symgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddContainsRemove(t *testing.T) {
	table := symgo.Table().MustBuild()
	red := table.Intern("red")
	green := table.Intern("green")
	blue := table.Intern("blue")

	s := New()
	assert.True(t, s.IsEmpty())

	s.Add(red)
	s.Add(green)
	s.Add(red)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(red))
	assert.True(t, s.Contains(green))
	assert.False(t, s.Contains(blue))

	s.Remove(green)
	assert.False(t, s.Contains(green))
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.IsEmpty())
}

func TestSet_ZeroSymbolIgnored(t *testing.T) {
	var zero symgo.Symbol

	s := New()
	s.Add(zero)
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains(zero))

	s = Of(zero)
	assert.True(t, s.IsEmpty())
}

func TestSet_Of(t *testing.T) {
	table := symgo.Table().MustBuild()
	syms := []symgo.Symbol{table.Intern("a"), table.Intern("b"), 0, table.Intern("c")}

	s := Of(syms...)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(syms[0]))
	assert.True(t, s.Contains(syms[1]))
	assert.True(t, s.Contains(syms[3]))
}

func TestSet_SetOps(t *testing.T) {
	table := symgo.Table().MustBuild()
	a := table.Intern("a")
	b := table.Intern("b")
	c := table.Intern("c")
	d := table.Intern("d")

	t.Run("Union", func(t *testing.T) {
		s := Of(a, b)
		s.Union(Of(b, c))
		assert.ElementsMatch(t, []symgo.Symbol{a, b, c}, s.Symbols())
	})

	t.Run("Intersect", func(t *testing.T) {
		s := Of(a, b, c)
		s.Intersect(Of(b, c, d))
		assert.ElementsMatch(t, []symgo.Symbol{b, c}, s.Symbols())
	})

	t.Run("Difference", func(t *testing.T) {
		s := Of(a, b, c)
		s.Difference(Of(b, d))
		assert.ElementsMatch(t, []symgo.Symbol{a, c}, s.Symbols())
	})
}

func TestSet_SetOpFunctions(t *testing.T) {
	table := symgo.Table().MustBuild()
	a := table.Intern("a")
	b := table.Intern("b")
	c := table.Intern("c")

	x := Of(a, b)
	y := Of(b, c)

	assert.ElementsMatch(t, []symgo.Symbol{a, b, c}, Union(x, y).Symbols())
	assert.ElementsMatch(t, []symgo.Symbol{b}, Intersect(x, y).Symbols())
	assert.ElementsMatch(t, []symgo.Symbol{a}, Difference(x, y).Symbols())

	// The inputs stay untouched.
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 2, y.Len())
}

func TestSet_CloneIsIndependent(t *testing.T) {
	table := symgo.Table().MustBuild()
	a := table.Intern("a")
	b := table.Intern("b")
	c := table.Intern("c")

	s := Of(a, b)
	clone := s.Clone()

	clone.Add(c)
	s.Remove(a)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, clone.Len())
	assert.True(t, clone.Contains(a))
}

func TestSet_Clear(t *testing.T) {
	table := symgo.Table().MustBuild()

	s := Of(table.Intern("a"), table.Intern("b"))
	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.Symbols())
}

func TestSet_Iterator(t *testing.T) {
	table := symgo.Table().MustBuild()

	s := New()
	for _, w := range []string{"one", "two", "three", "four", "five"} {
		s.Add(table.Intern(w))
	}

	var seen []symgo.Symbol
	for sym := range s.Iterator() {
		seen = append(seen, sym)
	}

	assert.Len(t, seen, 5)
	assert.True(t, slices.IsSorted(seen))
	assert.Equal(t, s.Symbols(), seen)

	var taken int
	for range s.Iterator() {
		taken++
		if taken == 2 {
			break
		}
	}
	assert.Equal(t, 2, taken)
}

func TestSet_Serialization(t *testing.T) {
	table := symgo.Table().MustBuild()

	s := New()
	for _, w := range []string{"alpha", "beta", "gamma"} {
		s.Add(table.Intern(w))
	}

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Positive(t, s.GetSizeInBytes())

	loaded := New()
	m, err := loaded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, s.Symbols(), loaded.Symbols())
}

// A serialized set only carries raw values, so restoring the table from a
// snapshot must reproduce the exact symbols the set was built from.
func TestSet_PairsWithSnapshot(t *testing.T) {
	ctx := context.Background()

	table := symgo.Table().MustBuild()
	words := []string{"alpha", "beta", "gamma", "delta"}
	s := New()
	for _, w := range words {
		s.Add(table.Intern(w))
	}
	table.Intern("outside")

	var setBuf, snapBuf bytes.Buffer
	_, err := s.WriteTo(&setBuf)
	require.NoError(t, err)
	require.NoError(t, table.WriteSnapshot(ctx, &snapBuf))

	restored, err := symgo.ReadSnapshot(ctx, &snapBuf)
	require.NoError(t, err)

	loaded := New()
	_, err = loaded.ReadFrom(&setBuf)
	require.NoError(t, err)

	var got []string
	for sym := range loaded.Iterator() {
		got = append(got, restored.Resolve(sym))
	}
	assert.ElementsMatch(t, words, got)

	outside, ok := restored.Lookup("outside")
	require.True(t, ok)
	assert.False(t, loaded.Contains(outside))
}

func BenchmarkSet_Contains(b *testing.B) {
	table := symgo.Table().MustBuild()

	s := New()
	var probe symgo.Symbol
	for i := range 4096 {
		sym := table.Intern(strconv.Itoa(i))
		s.Add(sym)
		probe = sym
	}

	b.ReportAllocs()
	for b.Loop() {
		if !s.Contains(probe) {
			b.Fatal("missing symbol")
		}
	}
}

func BenchmarkSet_Intersect(b *testing.B) {
	table := symgo.Table().MustBuild()

	x := New()
	y := New()
	for i := range 4096 {
		sym := table.Intern(strconv.Itoa(i))
		if i%2 == 0 {
			x.Add(sym)
		}
		if i%3 == 0 {
			y.Add(sym)
		}
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = Intersect(x, y)
	}
}
