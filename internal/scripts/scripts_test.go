package scripts

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/pagecontext"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

const fixture = `
/libs/fw:
  a:
    _type: ui-framework
    code: fa
    title: Framework A
/libs/base:
  _type: component
  common:
    _type: component-view
    footer.html: {_content: "<footer/>"}
/apps/widget:
  _type: component
  superType: base
  fa:
    _type: component-view
    body.html: {_content: "<div/>"}
  common:
    _type: component-view
    head.html: {_content: "<head/>"}
/content/site:
  theme: /libs/fw/a
  page:
    widget:
      resourceType: widget
    untyped: {}
    ghost:
      resourceType: missing
`

type env struct {
	store *resource.MemoryStore
	types *resolver.ComponentTypeResolver
	views *resolver.ViewResolver
	pages *pagecontext.Resolver
}

func newEnv(t *testing.T) *env {
	t.Helper()
	nodes, err := resource.LoadYAML([]byte(fixture), "/")
	require.NoError(t, err)
	s := resource.NewMemoryStore()
	require.NoError(t, s.Load(context.Background(), nodes))

	types := resolver.NewComponentTypeResolver(s, resource.NewOverlay("/apps", "/libs"), 8, nil)
	catalog := framework.NewCatalog(s,
		resource.NewOverlay("/apps/fw", "/libs/fw"),
		resource.NewOverlay("/etc/vendor", "/libs/vendor"), 8, nil)
	return &env{
		store: s,
		types: types,
		views: resolver.NewViewResolver(types, nil),
		pages: pagecontext.NewResolver(s, catalog, nil),
	}
}

func TestMapCache(t *testing.T) {
	c := NewMapCache()
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Put(c.Generation(), "k", "/a")
	c.Put(c.Generation(), "k", "/a")
	p, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "/a", p)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)

	c.InvalidateAll()
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)

	t.Run("writes from an earlier generation are dropped", func(t *testing.T) {
		stale := c.Generation()
		c.InvalidateAll()
		c.Put(stale, "old", "/old")
		_, ok := c.Get("old")
		assert.False(t, ok)
		assert.Equal(t, stale+1, c.Generation())
	})

	t.Run("concurrent idempotent writes", func(t *testing.T) {
		generation := c.Generation()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i%5)
				c.Put(generation, key, "/p/"+key)
				c.Get(key)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 5, c.Stats().Entries)
		p, _ := c.Get("k3")
		assert.Equal(t, "/p/k3", p)
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "/page|/fw|/apps/widget|body.html", Key("/page", "/fw", "/apps/widget", "body.html"))
}

func TestViewRetriever(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := NewViewRetriever(e.views, nil)

	widget, err := e.types.Resolve(ctx, "widget")
	require.NoError(t, err)
	fw := &model.UiFramework{Path: "/libs/fw/a", Code: "fa", Title: "Framework A"}

	tests := []struct {
		script, want string
	}{
		{"body.html", "/apps/widget/fa/body.html"},
		{"head.html", "/apps/widget/common/head.html"},
		{"footer.html", "/libs/base/common/footer.html"},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			n, err := r.GetScript(ctx, tt.script, widget, fw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Path)
		})
	}

	_, err = r.GetScript(ctx, "missing.html", widget, fw)
	assert.ErrorIs(t, err, ErrScriptNotFound)

	_, err = r.GetScript(ctx, "variations", widget, fw)
	assert.Error(t, err, "folders are not scripts")
}

func TestGetScriptPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var calls int64
	inner := NewViewRetriever(e.views, nil)
	counting := RetrieverFunc(func(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error) {
		atomic.AddInt64(&calls, 1)
		return inner.GetScript(ctx, name, ct, fw)
	})
	r := NewPathResolver(e.types, e.pages, counting, NewMapCache(), nil)

	component, _ := e.store.Resolve("/content/site/page/widget")
	req := pagecontext.Request{PagePath: "/content/site/page"}

	t.Run("second call served from cache", func(t *testing.T) {
		first, err := r.GetScriptPath(ctx, component, "body.html", req)
		require.NoError(t, err)
		second, err := r.GetScriptPath(ctx, component, "body.html", req)
		require.NoError(t, err)

		assert.Equal(t, "/apps/widget/fa/body.html", first)
		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	})

	t.Run("different request identity misses", func(t *testing.T) {
		other := pagecontext.Request{PagePath: "/content/site/page", Params: url.Values{pagecontext.ParamUiFramework: {"fa"}}}
		_, err := r.GetScriptPath(ctx, component, "body.html", other)
		require.NoError(t, err)
		assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	})

	t.Run("invalidate forces retrieval", func(t *testing.T) {
		r.InvalidateAll()
		_, err := r.GetScriptPath(ctx, component, "body.html", req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		before := atomic.LoadInt64(&calls)
		for i := 0; i < 2; i++ {
			_, err := r.GetScriptPath(ctx, component, "missing.html", req)
			assert.ErrorIs(t, err, ErrScriptNotFound)
		}
		assert.Equal(t, before+2, atomic.LoadInt64(&calls))
	})

	t.Run("invalid component type", func(t *testing.T) {
		untyped, _ := e.store.Resolve("/content/site/page/untyped")
		_, err := r.GetScriptPath(ctx, untyped, "body.html", req)
		assert.True(t, errors.IsInvalidType(err))

		ghost, _ := e.store.Resolve("/content/site/page/ghost")
		_, err = r.GetScriptPath(ctx, ghost, "body.html", req)
		assert.True(t, errors.IsInvalidType(err))

		_, err = r.GetScriptPath(ctx, nil, "body.html", req)
		assert.Error(t, err)
	})

	t.Run("purge during retrieval is not cached", func(t *testing.T) {
		var purging int64
		var r2 *PathResolver
		purgingRetriever := RetrieverFunc(func(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error) {
			if atomic.AddInt64(&purging, 1) == 1 {
				r2.InvalidateAll()
			}
			return inner.GetScript(ctx, name, ct, fw)
		})
		r2 = NewPathResolver(e.types, e.pages, purgingRetriever, NewMapCache(), nil)

		p, err := r2.GetScriptPath(ctx, component, "body.html", req)
		require.NoError(t, err)
		assert.Equal(t, "/apps/widget/fa/body.html", p)
		assert.Equal(t, 0, r2.Cache().Stats().Entries)

		_, err = r2.GetScriptPath(ctx, component, "body.html", req)
		require.NoError(t, err)
		assert.Equal(t, int64(2), atomic.LoadInt64(&purging))
		assert.Equal(t, 1, r2.Cache().Stats().Entries)
	})

	t.Run("no framework", func(t *testing.T) {
		n := resource.NewNode("/content/elsewhere/widget", "x").Set(model.PropResourceType, "widget")
		_, err := r.GetScriptPath(ctx, n, "body.html", pagecontext.Request{})
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})
}
