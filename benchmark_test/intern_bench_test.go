package benchmark_test

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/testutil"
)

// ============================================================================
// Intern Benchmarks
// ============================================================================

// BenchmarkIntern_Hit measures interning strings that are already present,
// drawn with Zipfian skew the way tokens repeat in real text.
func BenchmarkIntern_Hit(b *testing.B) {
	sizes := map[string]int{"small": vocabSmall, "large": vocabLarge}

	for name, size := range sizes {
		b.Run("vocab="+name, func(b *testing.B) {
			vocab := testutil.Words(size)
			tbl, _ := buildTable(b, symgo.DefaultShardCount, vocab)

			rng := testutil.NewRNG(benchSeed)
			tokens := rng.Tokens(vocab, 1<<16, 1.2)
			mask := len(tokens) - 1

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				tbl.Intern(tokens[i&mask])
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "tokens/sec")
		})
	}
}

// BenchmarkIntern_Miss measures first-sight interning. Tokens are formatted
// inline from a reused buffer, so the timing includes a few nanoseconds of
// formatting alongside the insert.
func BenchmarkIntern_Miss(b *testing.B) {
	tbl, _ := buildTable(b, symgo.DefaultShardCount, nil)

	buf := make([]byte, 0, 32)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf = strconv.AppendInt(buf[:0], int64(i), 10)
		tbl.InternBytes(buf)
	}

	b.StopTimer()
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "tokens/sec")
}

// BenchmarkIntern_Parallel measures contended interning across shard
// counts. One shard degenerates to a single mutex; more shards spread the
// lock traffic.
func BenchmarkIntern_Parallel(b *testing.B) {
	for _, shards := range []int{1, 16, 64} {
		b.Run("shards="+strconv.Itoa(shards), func(b *testing.B) {
			vocab := testutil.Words(vocabSmall)
			tbl, _ := buildTable(b, shards, vocab)

			rng := testutil.NewRNG(benchSeed)
			tokens := rng.Tokens(vocab, 1<<16, 1.2)
			mask := len(tokens) - 1

			// Start each goroutine at a different point in the stream so
			// they do not hammer the same token in lockstep.
			var offset atomic.Int64

			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := int(offset.Add(9973))
				for pb.Next() {
					tbl.Intern(tokens[i&mask])
					i++
				}
			})

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "tokens/sec")
		})
	}
}

// BenchmarkResolve measures symbol-to-string resolution.
func BenchmarkResolve(b *testing.B) {
	vocab := testutil.Words(vocabSmall)
	tbl, syms := buildTable(b, symgo.DefaultShardCount, vocab)

	rng := testutil.NewRNG(benchSeed)
	stream := make([]symgo.Symbol, 1<<16)
	for i, k := range rng.ZipfIndices(len(stream), len(syms), 1.2) {
		stream[i] = syms[k]
	}
	mask := len(stream) - 1

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = tbl.Resolve(stream[i&mask])
	}
}

// BenchmarkLookup measures probing without interning, for both outcomes.
func BenchmarkLookup(b *testing.B) {
	vocab := testutil.Words(vocabSmall)
	tbl, _ := buildTable(b, symgo.DefaultShardCount, vocab)

	rng := testutil.NewRNG(benchSeed)
	tokens := rng.Tokens(vocab, 1<<16, 1.2)
	mask := len(tokens) - 1

	b.Run("hit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, ok := tbl.Lookup(tokens[i&mask]); !ok {
				b.Fatal("unexpected miss")
			}
		}
	})

	b.Run("miss", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, ok := tbl.Lookup("never-interned"); ok {
				b.Fatal("unexpected hit")
			}
		}
	})
}
