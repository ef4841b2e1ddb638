package symgo

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/symgo/internal/shard"
)

var (
	// ErrInvalidShardCount is returned when the configured shard count is
	// outside [1, MaxShardCount].
	ErrInvalidShardCount = errors.New("shard count must be between 1 and 1024")

	// ErrCorruptSnapshot is returned when snapshot data fails structural or
	// checksum validation.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrHasherMismatch is returned when a snapshot was written under a
	// different hash policy than the one configured for loading.
	ErrHasherMismatch = errors.New("hasher mismatch")

	// ErrShardCountMismatch is returned when a snapshot was written with a
	// different shard count than the one configured for loading.
	ErrShardCountMismatch = errors.New("shard count mismatch")

	// ErrUnknownHasher is returned when a snapshot names a hasher that is
	// not built in and was not supplied explicitly.
	ErrUnknownHasher = errors.New("unknown hasher")
)

// ErrShardFull indicates that a shard ran out of representable local
// indices: the table was constructed with too many shard bits for the number
// of distinct strings routed to one shard.
//
// Intern panics with this error. It is a hard ceiling signaling a
// construction-time mis-sizing, not a transient condition; other shards keep
// working.
type ErrShardFull struct {
	Shard    int
	MaxLocal uint32
	cause    error
}

func (e *ErrShardFull) Error() string {
	return fmt.Sprintf("shard %d full: cannot represent local index %d in a symbol", e.Shard, e.MaxLocal)
}

func (e *ErrShardFull) Unwrap() error { return e.cause }

// ErrInvalidSymbol indicates a symbol that was not produced by the table it
// was presented to: the zero value, a shard index past the table's shard
// count, or a local index past the shard's length.
type ErrInvalidSymbol struct {
	Symbol Symbol
}

func (e *ErrInvalidSymbol) Error() string {
	return fmt.Sprintf("invalid symbol: %#08x", uint32(e.Symbol))
}

// translateSnapshotError normalizes low-level read failures so callers can
// test with errors.Is(err, ErrCorruptSnapshot).
func translateSnapshotError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated: %w", ErrCorruptSnapshot, err)
	}
	if errors.Is(err, shard.ErrFull) {
		return fmt.Errorf("%w: more strings than the table can hold: %w", ErrCorruptSnapshot, err)
	}
	return err
}
