package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/blobstore"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/resource"
	"golang.org/x/sync/errgroup"
)

// ErrNoSnapshot is returned by LoadLatest when nothing has been published.
var ErrNoSnapshot = errors.New("no snapshot has been published")

const (
	snapshotKeyFormat = "snapshots/%020d.symgo"
	manifestKeyFormat = "manifests/%020d.bin"

	snapshotPrefix = "snapshots/"
	manifestPrefix = "manifests/"

	// The loop context is already canceled when the shutdown flush runs,
	// so the flush gets its own deadline.
	shutdownFlushTimeout = 30 * time.Second
)

// Options configure the persistence manager.
type Options struct {
	// Codec encodes manifests. Default: codec.Default.
	Codec codec.Codec

	// Logger receives publish and prune events. Default: discard.
	Logger *symgo.Logger

	// Resources bounds background work, memory and IO. Nil means no limits.
	Resources *resource.Controller

	// Compression selects the snapshot block codec. Default: zstd.
	Compression symgo.CompressionType

	// Retain is how many published versions Prune keeps, newest first.
	// 0 keeps everything. Default: 3.
	Retain int

	// TableOptions apply to tables created by LoadLatest.
	TableOptions []symgo.Option
}

// WithCodec sets the manifest codec.
func WithCodec(c codec.Codec) func(*Options) {
	return func(o *Options) {
		o.Codec = c
	}
}

// WithLogger sets the logger for publish and prune events.
func WithLogger(l *symgo.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithResources sets the resource controller.
func WithResources(rc *resource.Controller) func(*Options) {
	return func(o *Options) {
		o.Resources = rc
	}
}

// WithCompression sets the snapshot compression.
func WithCompression(c symgo.CompressionType) func(*Options) {
	return func(o *Options) {
		o.Compression = c
	}
}

// WithRetain sets how many published versions Prune keeps.
func WithRetain(n int) func(*Options) {
	return func(o *Options) {
		o.Retain = n
	}
}

// WithTableOptions sets the options applied to tables created by LoadLatest.
func WithTableOptions(optFns ...symgo.Option) func(*Options) {
	return func(o *Options) {
		o.TableOptions = optFns
	}
}

func applyOptions(optFns []func(*Options)) Options {
	o := Options{
		Codec:       codec.Default,
		Logger:      symgo.NoopLogger(),
		Compression: symgo.CompressionZSTD,
		Retain:      3,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.Logger == nil {
		o.Logger = symgo.NoopLogger()
	}
	return o
}

// Manager publishes snapshots of one table to a blob store and prunes old
// versions. It is safe for concurrent use.
type Manager struct {
	table   *symgo.SymbolTable
	store   blobstore.Store
	commits blobstore.CommitStore
	opts    Options

	mu sync.Mutex // serializes Publish and Prune
}

// NewManager creates a Manager that publishes snapshots of table.
func NewManager(table *symgo.SymbolTable, store blobstore.Store, commits blobstore.CommitStore, optFns ...func(*Options)) (*Manager, error) {
	if table == nil {
		return nil, errors.New("table must not be nil")
	}
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	if commits == nil {
		return nil, errors.New("commit store must not be nil")
	}

	return &Manager{
		table:   table,
		store:   store,
		commits: commits,
		opts:    applyOptions(optFns),
	}, nil
}

// Publish writes a snapshot of the table and commits it as the next
// version. It returns the committed version.
//
// When another publisher commits the same version first, Publish removes
// its now-unreachable objects and returns
// blobstore.ErrConcurrentModification; the caller may simply retry.
func (m *Manager) Publish(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version, key, err := m.publish(ctx)
	m.opts.Logger.LogPublish(ctx, version, key, err)
	return version, err
}

func (m *Manager) publish(ctx context.Context) (uint64, string, error) {
	if err := m.opts.Resources.AcquireBackground(ctx); err != nil {
		return 0, "", err
	}
	defer m.opts.Resources.ReleaseBackground()

	current, _, err := m.commits.Current(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read current version: %w", err)
	}
	next := current + 1

	var buf bytes.Buffer
	w := resource.NewRateLimitedWriter(&buf, m.opts.Resources, ctx)
	if err := m.table.WriteSnapshot(ctx, w, symgo.WithCompression(m.opts.Compression)); err != nil {
		return 0, "", err
	}

	snapshotKey := fmt.Sprintf(snapshotKeyFormat, next)
	if err := m.store.Put(ctx, snapshotKey, buf.Bytes()); err != nil {
		return 0, "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	stats := m.table.Stats()
	manifest := &Manifest{
		Version:     next,
		SnapshotKey: snapshotKey,
		CreatedAt:   time.Now().UTC(),
		Symbols:     stats.Symbols,
		NumShards:   stats.NumShards,
		Hasher:      m.table.HasherName(),
		SizeBytes:   int64(buf.Len()),
	}
	data, err := encodeManifest(m.opts.Codec, manifest)
	if err != nil {
		m.discard(ctx, snapshotKey)
		return 0, "", err
	}

	manifestKey := fmt.Sprintf(manifestKeyFormat, next)
	if err := m.store.Put(ctx, manifestKey, data); err != nil {
		m.discard(ctx, snapshotKey)
		return 0, "", fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := m.commits.Commit(ctx, next, manifestKey); err != nil {
		// Lost the race or the commit failed; either way the objects are
		// unreachable, so collect them now instead of waiting for Prune.
		m.discard(ctx, manifestKey, snapshotKey)
		return 0, "", err
	}

	return next, manifestKey, nil
}

// discard removes objects from a failed publish, best effort.
func (m *Manager) discard(ctx context.Context, names ...string) {
	for _, name := range names {
		_ = m.store.Delete(ctx, name)
	}
}

// Prune deletes snapshots and manifests outside the retention window,
// along with their commit records. The current version is never pruned.
func (m *Manager) Prune(ctx context.Context) error {
	if m.opts.Retain <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	deleted, err := m.prune(ctx)
	m.opts.Logger.LogPrune(ctx, deleted, err)
	return err
}

func (m *Manager) prune(ctx context.Context) (int, error) {
	if err := m.opts.Resources.AcquireBackground(ctx); err != nil {
		return 0, err
	}
	defer m.opts.Resources.ReleaseBackground()

	current, _, err := m.commits.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read current version: %w", err)
	}
	if current <= uint64(m.opts.Retain) {
		return 0, nil
	}
	cutoff := current - uint64(m.opts.Retain) + 1

	var names []string
	for _, prefix := range []string{snapshotPrefix, manifestPrefix} {
		ns, err := m.store.List(ctx, prefix)
		if err != nil {
			return 0, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		names = append(names, ns...)
	}

	// Orphans from failed publishes are collected here too, once their
	// version falls below the cutoff. Versions above it may belong to a
	// publish still in flight, so they are left alone.
	var victims []string
	for _, name := range names {
		if v, ok := versionFromKey(name); ok && v < cutoff {
			victims = append(victims, name)
		}
	}

	var deleted atomic.Int64
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range victims {
		g.Go(func() error {
			if err := m.store.Delete(ctx, name); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(deleted.Load()), err
	}

	if err := m.commits.PruneBelow(ctx, cutoff); err != nil {
		return int(deleted.Load()), err
	}
	return int(deleted.Load()), nil
}

// versionFromKey parses the version out of a snapshot or manifest name.
func versionFromKey(name string) (uint64, bool) {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	v, err := strconv.ParseUint(base, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// Run publishes on a fixed interval until ctx is canceled, pruning after
// each successful publish. Ticks where the table has not grown since the
// last publish are skipped. On cancellation Run makes a final publish
// attempt so symbols interned since the last tick survive shutdown, then
// returns the context error.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastPublished := -1
	for {
		select {
		case <-ctx.Done():
			if n := m.table.Len(); n > 0 && n != lastPublished {
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
				_, _ = m.Publish(flushCtx)
				cancel()
			}
			return ctx.Err()
		case <-ticker.C:
			n := m.table.Len()
			if n == lastPublished {
				continue
			}
			if _, err := m.Publish(ctx); err != nil {
				// Logged by Publish; retried on the next tick.
				continue
			}
			lastPublished = n
			_ = m.Prune(ctx)
		}
	}
}

// LoadLatest restores the most recently published table.
//
// It returns ErrNoSnapshot when the commit store has no version yet. The
// returned manifest describes what was loaded.
func LoadLatest(ctx context.Context, store blobstore.Store, commits blobstore.CommitStore, optFns ...func(*Options)) (*symgo.SymbolTable, *Manifest, error) {
	o := applyOptions(optFns)

	version, manifestKey, err := commits.Current(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read current version: %w", err)
	}
	if version == 0 {
		return nil, nil, ErrNoSnapshot
	}

	data, err := store.Get(ctx, manifestKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest %s: %w", manifestKey, err)
	}
	manifest, err := decodeManifest(data)
	if err != nil {
		return nil, nil, err
	}

	snap, err := store.Get(ctx, manifest.SnapshotKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", manifest.SnapshotKey, err)
	}

	r := resource.NewRateLimitedReader(bytes.NewReader(snap), o.Resources, ctx)
	table, err := symgo.ReadSnapshot(ctx, r, o.TableOptions...)
	if err != nil {
		return nil, nil, err
	}
	return table, manifest, nil
}
