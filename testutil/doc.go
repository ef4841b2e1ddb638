// Package testutil provides testing utilities for Symgo.
//
// This package is intended for use in tests and benchmarks only. It
// provides deterministic vocabulary generation and skewed token streams
// that mimic natural token frequency.
//
// # Vocabulary Generation
//
//	vocab := testutil.Words(100_000)   // distinct, reproducible pseudo-words
//
// # Skewed Token Streams
//
//	rng := testutil.NewRNG(seed)
//	tokens := rng.Tokens(vocab, 1_000_000, 1.2)   // Zipf-distributed draws
package testutil
