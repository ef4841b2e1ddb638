package symgo

import (
	"github.com/hupe1980/symgo/hasher"
)

// Table creates a new table builder with default configuration.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	st := symgo.Table().
//	    Shards(64).
//	    Hasher(hasher.NewMapHash()).
//	    MustBuild()
func Table() TableBuilder {
	return TableBuilder{
		numShards: DefaultShardCount,
	}
}

// TableBuilder is an immutable fluent builder for creating SymbolTable instances.
// Each method returns a new builder with the updated configuration.
type TableBuilder struct {
	numShards int
	hasher    hasher.Hasher
	logger    *Logger
	metrics   MetricsCollector
}

// Shards sets the number of independently locked shards.
// Default: 16. Must be in [1, MaxShardCount].
func (b TableBuilder) Shards(n int) TableBuilder {
	b.numShards = n
	return b
}

// Hasher sets the hash policy for shard routing and in-shard lookup.
func (b TableBuilder) Hasher(h hasher.Hasher) TableBuilder {
	b.hasher = h
	return b
}

// Logger sets the structured logger for snapshot and capacity events.
func (b TableBuilder) Logger(l *Logger) TableBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b TableBuilder) Metrics(mc MetricsCollector) TableBuilder {
	b.metrics = mc
	return b
}

// Build creates the SymbolTable instance.
func (b TableBuilder) Build() (*SymbolTable, error) {
	var optFns []Option
	if b.numShards != DefaultShardCount {
		optFns = append(optFns, WithNumShards(b.numShards))
	}
	if b.hasher != nil {
		optFns = append(optFns, WithHasher(b.hasher))
	}
	if b.logger != nil {
		optFns = append(optFns, WithLogger(b.logger))
	}
	if b.metrics != nil {
		optFns = append(optFns, WithMetricsCollector(b.metrics))
	}

	return New(optFns...)
}

// MustBuild creates the SymbolTable instance, panicking on error.
func (b TableBuilder) MustBuild() *SymbolTable {
	st, err := b.Build()
	if err != nil {
		panic(err)
	}
	return st
}
