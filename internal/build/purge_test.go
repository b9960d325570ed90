package build

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/compile"
	"github.com/conneroisu/thematic/internal/resource"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateAll() { c.calls++ }

func TestPurgeRebuildsNonEmptyOutput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture, Config{Root: "/var/cache", Memory: NewMemoryCache(1<<20, 0)})
	inv := &countingInvalidator{}
	p := NewPurger(h.output, time.Second, nil, inv, h.types)

	ran, err := p.Purge(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, inv.calls)

	got, err := h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	t.Run("new component types appear after a purge", func(t *testing.T) {
		nodes, err := resource.LoadYAML([]byte(`
/apps/W:
  _type: component
  f:
    _type: component-view
    W.css: {_content: ".W{}"}
`), "/")
		require.NoError(t, err)
		require.NoError(t, h.store.Load(ctx, nodes))

		require.NoError(t, p.ForcePurge(ctx))
		got, err := h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
		require.NoError(t, err)
		assert.Equal(t, ".L{}.self{}.V{}.Var{}.W{}", got)
	})
}

func TestPurgeDebounce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture, Config{Root: "/var/cache"})
	inv := &countingInvalidator{}
	p := NewPurger(h.output, time.Second, nil, inv)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	ran, err := p.Purge(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	now = now.Add(500 * time.Millisecond)
	ran, err = p.Purge(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "triggers inside the interval collapse")

	now = now.Add(600 * time.Millisecond)
	ran, err = p.Purge(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, 2, p.Purges())
	assert.Equal(t, 2, inv.calls)

	require.NoError(t, p.ForcePurge(ctx))
	assert.Equal(t, 3, p.Purges())
}

func TestPurgeReportsRebuildFailure(t *testing.T) {
	h := newHarness(t, "", Config{Root: "/var/cache", Attempts: 2})
	p := NewPurger(h.output, 0, nil)

	ran, err := p.Purge(context.Background())
	assert.True(t, ran)
	require.Error(t, err)
	assert.Equal(t, 1, h.store.refreshes)
}
