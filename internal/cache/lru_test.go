package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/symgo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUObjectCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(1024, nil)

	c.Set(ctx, "manifests/1.json", []byte(`{"version":1}`))

	got, ok := c.Get(ctx, "manifests/1.json")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"version":1}`), got)

	_, ok = c.Get(ctx, "manifests/2.json")
	assert.False(t, ok)
}

func TestLRUObjectCache_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(100, nil)

	c.Set(ctx, "a", make([]byte, 40))
	c.Set(ctx, "b", make([]byte, 40))
	c.Set(ctx, "c", make([]byte, 40)) // pushes "a" out

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)

	assert.Equal(t, int64(80), c.Size())
}

func TestLRUObjectCache_RecencyOrder(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(100, nil)

	c.Set(ctx, "a", make([]byte, 40))
	c.Set(ctx, "b", make([]byte, 40))

	// Touching "a" makes "b" the eviction candidate.
	_, ok := c.Get(ctx, "a")
	require.True(t, ok)

	c.Set(ctx, "c", make([]byte, 40))

	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestLRUObjectCache_UpdateResizes(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(100, nil)

	c.Set(ctx, "a", make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(ctx, "a", make([]byte, 30))
	assert.Equal(t, int64(30), c.Size())

	c.Set(ctx, "a", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Len(t, got, 5)
}

func TestLRUObjectCache_OversizedObject(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(100, nil)

	c.Set(ctx, "small", make([]byte, 10))
	c.Set(ctx, "huge", make([]byte, 200))

	// The oversized object is rejected without disturbing residents.
	_, ok := c.Get(ctx, "huge")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "small")
	assert.True(t, ok)
}

func TestLRUObjectCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(1024, nil)

	c.Set(ctx, "snapshots/1.symgo", make([]byte, 10))
	c.Set(ctx, "snapshots/2.symgo", make([]byte, 10))
	c.Set(ctx, "manifests/1.json", make([]byte, 10))

	c.Invalidate(func(name string) bool {
		return name == "snapshots/1.symgo"
	})

	_, ok := c.Get(ctx, "snapshots/1.symgo")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "snapshots/2.symgo")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "manifests/1.json")
	assert.True(t, ok)

	assert.Equal(t, int64(20), c.Size())
}

func TestLRUObjectCache_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewLRUObjectCache(1024, nil)

	c.Set(ctx, "a", []byte("x"))

	c.Get(ctx, "a")
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUObjectCache_ResourceController(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	c := NewLRUObjectCache(1024, rc)

	c.Set(ctx, "a", make([]byte, 48))
	assert.Equal(t, int64(48), rc.MemoryUsage())

	// The controller is out of budget, so admission is denied even though
	// the cache itself has room.
	c.Set(ctx, "b", make([]byte, 48))
	_, ok := c.Get(ctx, "b")
	assert.False(t, ok)
	assert.Equal(t, int64(48), rc.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}
