package integration_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/blobstore"
	"github.com/hupe1980/symgo/persistence"
	"github.com/hupe1980/symgo/resource"
	"github.com/hupe1980/symgo/symbolset"
	"github.com/hupe1980/symgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_PublishPruneReload drives the full snapshot pipeline: intern a
// vocabulary, publish three generations, prune to the retention window and
// restore the latest version into a fresh table.
func TestE2E_PublishPruneReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := blobstore.NewLocalStore(filepath.Join(dir, "objects"))
	commits := blobstore.NewLocalCommitStore(filepath.Join(dir, "commits"))
	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 2,
		IOLimitBytesPerSec:   64 << 20,
	})

	table, err := symgo.New(symgo.WithNumShards(32))
	require.NoError(t, err)

	mgr, err := persistence.NewManager(table, store, commits,
		persistence.WithRetain(2),
		persistence.WithResources(rc),
		persistence.WithCompression(symgo.CompressionLZ4),
	)
	require.NoError(t, err)

	// 1. Intern in three batches, publishing after each one.
	vocab := testutil.Words(2000)
	syms := make(map[string]symgo.Symbol, len(vocab))

	batches := [][]string{vocab[:500], vocab[500:1200], vocab[1200:]}
	for i, batch := range batches {
		for _, w := range batch {
			syms[w] = table.Intern(w)
		}

		version, err := mgr.Publish(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), version)
	}

	// 2. Prune down to the retention window.
	require.NoError(t, mgr.Prune(ctx))

	snapshots, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)

	manifests, err := store.List(ctx, "manifests/")
	require.NoError(t, err)
	assert.Len(t, manifests, 2)

	// 3. Restore the latest version the way a fresh process would.
	restored, manifest, err := persistence.LoadLatest(ctx, store, commits,
		persistence.WithResources(rc),
	)
	require.NoError(t, err)
	require.EqualValues(t, 3, manifest.Version)
	assert.Equal(t, len(vocab), manifest.Symbols)
	assert.Equal(t, 32, manifest.NumShards)
	assert.Equal(t, "fnv1a", manifest.Hasher)

	require.Equal(t, table.Len(), restored.Len())
	for w, sym := range syms {
		got, ok := restored.Lookup(w)
		require.True(t, ok, "missing %q after reload", w)
		require.Equal(t, sym, got, "symbol for %q drifted across reload", w)
		require.Equal(t, w, restored.Resolve(got))
	}

	// 4. A symbol set serialized against the old table must line up with
	// lookups on the restored one.
	set := symbolset.Of(syms[vocab[0]], syms[vocab[7]], syms[vocab[1500]])

	var buf bytes.Buffer
	_, err = set.WriteTo(&buf)
	require.NoError(t, err)

	decoded := symbolset.New()
	_, err = decoded.ReadFrom(&buf)
	require.NoError(t, err)

	for _, w := range []string{vocab[0], vocab[7], vocab[1500]} {
		sym, ok := restored.Lookup(w)
		require.True(t, ok)
		assert.True(t, decoded.Contains(sym), "set lost %q", w)
	}

	outside, ok := restored.Lookup(vocab[3])
	require.True(t, ok)
	assert.False(t, decoded.Contains(outside))
}

// TestE2E_RestartAppend restores a published table, keeps interning and
// publishes again, mirroring a process restart between generations.
func TestE2E_RestartAppend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := blobstore.NewLocalStore(filepath.Join(dir, "objects"))
	commits := blobstore.NewLocalCommitStore(filepath.Join(dir, "commits"))

	words := testutil.Words(500)

	// 1. First process: intern and publish.
	first, err := symgo.New(symgo.WithNumShards(8))
	require.NoError(t, err)

	firstSyms := make([]symgo.Symbol, 300)
	for i, w := range words[:300] {
		firstSyms[i] = first.Intern(w)
	}

	mgr, err := persistence.NewManager(first, store, commits)
	require.NoError(t, err)

	_, err = mgr.Publish(ctx)
	require.NoError(t, err)

	// 2. Second process: restore, intern more, publish again.
	second, _, err := persistence.LoadLatest(ctx, store, commits)
	require.NoError(t, err)

	for i, w := range words[:300] {
		require.Equal(t, firstSyms[i], second.Intern(w))
	}

	secondSyms := make([]symgo.Symbol, 200)
	for i, w := range words[300:] {
		secondSyms[i] = second.Intern(w)
	}

	mgr2, err := persistence.NewManager(second, store, commits)
	require.NoError(t, err)

	version, err := mgr2.Publish(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, version)

	// 3. Third process: everything from both generations must resolve.
	third, manifest, err := persistence.LoadLatest(ctx, store, commits)
	require.NoError(t, err)
	require.Equal(t, 500, manifest.Symbols)

	for i, w := range words[:300] {
		got, ok := third.Lookup(w)
		require.True(t, ok)
		require.Equal(t, firstSyms[i], got)
		require.Equal(t, w, third.Resolve(got))
	}
	for i, w := range words[300:] {
		got, ok := third.Lookup(w)
		require.True(t, ok)
		require.Equal(t, secondSyms[i], got)
	}
}

// TestE2E_CachedReload reads published objects through a caching store and
// checks that repeated restores are served from memory.
func TestE2E_CachedReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	local := blobstore.NewLocalStore(filepath.Join(dir, "objects"))
	commits := blobstore.NewLocalCommitStore(filepath.Join(dir, "commits"))

	table, err := symgo.New()
	require.NoError(t, err)
	for _, w := range testutil.Words(1000) {
		table.Intern(w)
	}

	mgr, err := persistence.NewManager(table, local, commits)
	require.NoError(t, err)

	_, err = mgr.Publish(ctx)
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8 << 20})
	cached := blobstore.NewCachingStore(local, 1<<20, rc)
	defer cached.Close()

	// The first restore misses on both the manifest and the snapshot.
	restored, _, err := persistence.LoadLatest(ctx, cached, commits)
	require.NoError(t, err)
	require.Equal(t, table.Len(), restored.Len())

	hits, misses := cached.CacheStats()
	assert.EqualValues(t, 0, hits)
	assert.EqualValues(t, 2, misses)
	assert.Positive(t, rc.MemoryUsage())

	// The second one is served from the cache.
	again, _, err := persistence.LoadLatest(ctx, cached, commits)
	require.NoError(t, err)
	require.Equal(t, table.Len(), again.Len())

	hits, misses = cached.CacheStats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 2, misses)
}
