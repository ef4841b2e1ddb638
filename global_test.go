package symgo

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The global table is shared by every test in the package, so these tests
// use strings no other test interns and never assert on its Len.

func TestGlobal_Singleton(t *testing.T) {
	a := Global()
	b := Global()
	require.NotNil(t, a)
	assert.Same(t, a, b)
}

func TestGlobalSymbol_Intern(t *testing.T) {
	g := Intern("global-roundtrip")
	require.True(t, g.Valid())
	assert.Equal(t, "global-roundtrip", g.String())

	assert.Equal(t, g, Intern("global-roundtrip"))
	assert.Equal(t, g, InternBytes([]byte("global-roundtrip")))
	assert.Equal(t, g.Symbol(), Global().Intern("global-roundtrip"))
}

func TestGlobalSymbol_ZeroValue(t *testing.T) {
	var zero GlobalSymbol
	assert.False(t, zero.Valid())
	assert.Equal(t, "", zero.String())

	_, err := zero.MarshalText()
	var invalid *ErrInvalidSymbol
	require.ErrorAs(t, err, &invalid)
}

func TestGlobalSymbol_TextRoundTrip(t *testing.T) {
	g := Intern("text-wire-form")

	text, err := g.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "text-wire-form", string(text))

	var decoded GlobalSymbol
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, g, decoded)
}

func TestGlobalSymbol_JSON(t *testing.T) {
	type token struct {
		Kind GlobalSymbol `json:"kind"`
	}

	in := token{Kind: Intern("json-keyword")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"json-keyword"}`, string(data))

	var out token
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Kind, out.Kind)

	// Content the process has never seen interns on decode.
	var fresh token
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"json-never-seen-before"}`), &fresh))
	assert.Equal(t, "json-never-seen-before", fresh.Kind.String())
}

func TestGlobalSymbol_AsMapKey(t *testing.T) {
	counts := make(map[GlobalSymbol]int)
	for _, s := range []string{"map-g-x", "map-g-y", "map-g-x"} {
		counts[Intern(s)]++
	}

	assert.Len(t, counts, 2)
	assert.Equal(t, 2, counts[Intern("map-g-x")])
	assert.Equal(t, 1, counts[Intern("map-g-y")])
}

func TestLazySymbol(t *testing.T) {
	lazy := NewLazySymbol("lazy-deferred-token")
	assert.Equal(t, "lazy-deferred-token", lazy.String())

	// Construction does not intern.
	_, ok := Global().Lookup("lazy-deferred-token")
	require.False(t, ok)

	sym := lazy.Symbol()
	require.True(t, sym.Valid())
	assert.Equal(t, Intern("lazy-deferred-token"), sym)
	assert.Equal(t, sym, lazy.Symbol())
}

func TestLazySymbol_Concurrent(t *testing.T) {
	lazy := NewLazySymbol("lazy-raced-token")

	const goroutines = 16
	syms := make([]GlobalSymbol, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syms[g] = lazy.Symbol()
		}()
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		assert.Equal(t, syms[0], syms[g])
	}
	assert.Equal(t, "lazy-raced-token", syms[0].String())
}
