package symgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Intern and Resolve sit on nanosecond-scale hot paths, so their hooks carry
// no timing; implementations should stick to counter updates.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    internCounter *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordIntern(isNew bool) {
//	    p.internCounter.WithLabelValues(strconv.FormatBool(isNew)).Inc()
//	}
type MetricsCollector interface {
	// RecordIntern is called after each intern operation.
	// isNew reports whether the call created a new symbol.
	RecordIntern(isNew bool)

	// RecordResolve is called after each successful resolve operation.
	RecordResolve()

	// RecordLookup is called after each lookup operation.
	// found reports whether the string was already interned.
	RecordLookup(found bool)

	// RecordSnapshotSave is called after each snapshot write.
	// duration is the total time taken, err is nil if successful.
	RecordSnapshotSave(duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot read.
	RecordSnapshotLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIntern(bool)                       {}
func (NoopMetricsCollector) RecordResolve()                          {}
func (NoopMetricsCollector) RecordLookup(bool)                       {}
func (NoopMetricsCollector) RecordSnapshotSave(time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshotLoad(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InternCount        atomic.Int64
	InternNew          atomic.Int64
	ResolveCount       atomic.Int64
	LookupCount        atomic.Int64
	LookupMisses       atomic.Int64
	SnapshotSaveCount  atomic.Int64
	SnapshotSaveErrors atomic.Int64
	SnapshotSaveNanos  atomic.Int64
	SnapshotLoadCount  atomic.Int64
	SnapshotLoadErrors atomic.Int64
	SnapshotLoadNanos  atomic.Int64
}

// RecordIntern implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIntern(isNew bool) {
	b.InternCount.Add(1)
	if isNew {
		b.InternNew.Add(1)
	}
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve() {
	b.ResolveCount.Add(1)
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool) {
	b.LookupCount.Add(1)
	if !found {
		b.LookupMisses.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(duration time.Duration, err error) {
	b.SnapshotSaveCount.Add(1)
	b.SnapshotSaveNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(duration time.Duration, err error) {
	b.SnapshotLoadCount.Add(1)
	b.SnapshotLoadNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InternCount:        b.InternCount.Load(),
		InternNew:          b.InternNew.Load(),
		InternHits:         b.InternCount.Load() - b.InternNew.Load(),
		ResolveCount:       b.ResolveCount.Load(),
		LookupCount:        b.LookupCount.Load(),
		LookupMisses:       b.LookupMisses.Load(),
		SnapshotSaveCount:  b.SnapshotSaveCount.Load(),
		SnapshotSaveErrors: b.SnapshotSaveErrors.Load(),
		SnapshotSaveAvg:    avgNanos(b.SnapshotSaveNanos.Load(), b.SnapshotSaveCount.Load()),
		SnapshotLoadCount:  b.SnapshotLoadCount.Load(),
		SnapshotLoadErrors: b.SnapshotLoadErrors.Load(),
		SnapshotLoadAvg:    avgNanos(b.SnapshotLoadNanos.Load(), b.SnapshotLoadCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InternCount        int64
	InternNew          int64
	InternHits         int64
	ResolveCount       int64
	LookupCount        int64
	LookupMisses       int64
	SnapshotSaveCount  int64
	SnapshotSaveErrors int64
	SnapshotSaveAvg    int64
	SnapshotLoadCount  int64
	SnapshotLoadErrors int64
	SnapshotLoadAvg    int64
}
