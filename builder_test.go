package symgo_test

import (
	"testing"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/hasher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	tbl := symgo.Table().MustBuild()

	assert.Equal(t, symgo.DefaultShardCount, tbl.Stats().NumShards)
	assert.Equal(t, "fnv1a", tbl.HasherName())
}

func TestBuilder_FullOptions(t *testing.T) {
	mc := &symgo.BasicMetricsCollector{}

	tbl, err := symgo.Table().
		Shards(64).
		Hasher(hasher.NewMapHash()).
		Logger(symgo.NoopLogger()).
		Metrics(mc).
		Build()
	require.NoError(t, err)

	sym := tbl.Intern("built")
	assert.Equal(t, "built", tbl.Resolve(sym))
	assert.Equal(t, 64, tbl.Stats().NumShards)
	assert.Equal(t, "maphash", tbl.HasherName())
	assert.Equal(t, int64(1), mc.GetStats().InternCount)
}

func TestBuilder_InvalidShards(t *testing.T) {
	_, err := symgo.Table().Shards(0).Build()
	assert.ErrorIs(t, err, symgo.ErrInvalidShardCount)

	_, err = symgo.Table().Shards(symgo.MaxShardCount + 1).Build()
	assert.ErrorIs(t, err, symgo.ErrInvalidShardCount)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustBuild to panic on invalid config")
		}
	}()

	_ = symgo.Table().Shards(0).MustBuild()
}

func TestBuilder_ValueSemantics(t *testing.T) {
	base := symgo.Table()
	four := base.Shards(4)
	eight := base.Shards(8)

	// Deriving from a builder never mutates it.
	assert.Equal(t, symgo.DefaultShardCount, base.MustBuild().Stats().NumShards)
	assert.Equal(t, 4, four.MustBuild().Stats().NumShards)
	assert.Equal(t, 8, eight.MustBuild().Stats().NumShards)
}
