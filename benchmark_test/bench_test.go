// Package benchmark_test holds macro benchmarks that exercise the public
// API the way a tokenizer-style workload would.
package benchmark_test

import (
	"testing"

	"github.com/hupe1980/symgo"
)

const (
	benchSeed = 4711

	vocabSmall = 1_000
	vocabLarge = 100_000
)

// buildTable interns words into a fresh table and returns it together with
// the symbols, in word order.
func buildTable(b *testing.B, shards int, words []string) (*symgo.SymbolTable, []symgo.Symbol) {
	b.Helper()

	tbl, err := symgo.New(symgo.WithNumShards(shards))
	if err != nil {
		b.Fatal(err)
	}
	syms := make([]symgo.Symbol, len(words))
	for i, w := range words {
		syms[i] = tbl.Intern(w)
	}
	return tbl, syms
}
