package symgo

import (
	"log/slog"

	"github.com/hupe1980/symgo/hasher"
)

type options struct {
	numShards        int
	hasher           hasher.Hasher
	metricsCollector MetricsCollector
	logger           *Logger

	// Set flags let ReadSnapshot tell an explicit choice apart from a
	// default, so it can reject configurations that conflict with what
	// the snapshot records.
	numShardsSet bool
	hasherSet    bool
}

// Option configures SymbolTable construction.
type Option func(*options)

// WithNumShards configures the number of independently locked shards.
//
// Sharding eliminates the global lock bottleneck by partitioning strings
// across independent locks; with a well-distributed hash, contention drops
// by roughly the shard count. Must be in [1, MaxShardCount].
//
// Trade-off: every extra shard bit halves the number of distinct strings one
// shard can hold (the local index shares a 32-bit handle with the shard
// index). With the default 16 shards each shard still holds over 268 million
// strings.
func WithNumShards(numShards int) Option {
	return func(o *options) {
		o.numShards = numShards
		o.numShardsSet = true
	}
}

// WithHasher configures the hash policy used for shard routing and in-shard
// lookup.
//
// If nil is passed, hasher.Default is used. The default is deterministic, so
// routing and symbol values reproduce across runs; use hasher.NewMapHash for
// per-process random hashing when inputs may be adversarial.
func WithHasher(h hasher.Hasher) Option {
	return func(o *options) {
		if h == nil {
			o.hasher = hasher.Default
			return
		}
		o.hasher = h
		o.hasherSet = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &symgo.BasicMetricsCollector{}
//	st, _ := symgo.New(symgo.WithMetricsCollector(metrics))
//	// ... use st ...
//	stats := metrics.GetStats()
//	fmt.Printf("Interns: %d, New: %d\n", stats.InternCount, stats.InternNew)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for snapshot and capacity events.
// The interning hot path itself is never logged.
//
// Example with JSON logging:
//
//	logger := symgo.NewJSONLogger(slog.LevelInfo)
//	st, _ := symgo.New(symgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		numShards:        DefaultShardCount,
		hasher:           hasher.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
