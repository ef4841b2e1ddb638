package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// syllables are all two characters, so concatenations decode uniquely and
// every index maps to a distinct word.
var syllables = [...]string{"ba", "de", "ki", "lo", "mu", "na", "po", "ra", "su", "ti", "vo", "ze"}

// Words returns n distinct pseudo-words. The result depends only on n, so
// vocabularies reproduce across runs and processes.
func Words(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = word(i)
	}
	return words
}

// word spells out i in base-len(syllables).
func word(i int) string {
	var b []byte
	for {
		b = append(b, syllables[i%len(syllables)]...)
		i /= len(syllables)
		if i == 0 {
			return string(b)
		}
	}
}

// ZipfIndices returns n indices in [0, size) following Zipf's law with skew
// s: P(k) ∝ 1/k^s. s=1.0 gives standard Zipf, larger values concentrate
// more mass on the low ranks. This is how real-world token frequencies are
// distributed (power law).
func (r *RNG) ZipfIndices(n, size int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, n)
	if size <= 1 {
		return out
	}

	// Cumulative mass table for inverse-transform sampling.
	cum := make([]float64, size)
	var total float64
	for k := 1; k <= size; k++ {
		total += 1.0 / math.Pow(float64(k), s)
		cum[k-1] = total
	}

	for i := range out {
		u := r.rand.Float64() * total
		out[i] = sort.SearchFloat64s(cum, u)
	}
	return out
}

// Tokens returns a stream of n tokens drawn from vocab with Zipfian skew s,
// mimicking natural token frequency: a few hot tokens dominate, with a long
// tail of rare ones.
func (r *RNG) Tokens(vocab []string, n int, s float64) []string {
	idx := r.ZipfIndices(n, len(vocab), s)
	out := make([]string, n)
	for i, k := range idx {
		out[i] = vocab[k]
	}
	return out
}
