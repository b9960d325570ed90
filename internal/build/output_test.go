package build

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/compile"
	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

const fixture = `
/libs/vendor/L:
  _type: vendor-library
  L.css: {_content: ".L{}"}
  L.js: {_content: "L();"}
/libs/fw/f:
  _type: ui-framework
  code: f
  vendorLibraries: [L]
  self.css: {_content: ".self{}"}
  themes:
    default:
      _type: theme
      default.css: {_content: ".theme{}"}
/apps/V:
  _type: component
  f:
    _type: component-view
    V.css: {_content: ".V{}"}
    V.html: {_content: "<p>v</p>"}
    variations:
      Var: {_type: variation, Var.css: {_content: ".Var{}"}}
`

// countingStore counts refreshes and runs onRefresh before each one.
type countingStore struct {
	*resource.MemoryStore
	refreshes int
	onRefresh func(n int)
}

func (s *countingStore) Refresh(ctx context.Context) error {
	s.refreshes++
	if s.onRefresh != nil {
		s.onRefresh(s.refreshes)
	}
	return s.MemoryStore.Refresh(ctx)
}

type harness struct {
	store  *countingStore
	output *OutputCache
	types  *compile.ComponentTypeCache
	sleeps int
}

func newHarness(t *testing.T, content string, cfg Config) *harness {
	t.Helper()
	s := &countingStore{MemoryStore: resource.NewMemoryStore()}
	if content != "" {
		nodes, err := resource.LoadYAML([]byte(content), "/")
		require.NoError(t, err)
		require.NoError(t, s.Load(context.Background(), nodes))
	}

	types := resolver.NewComponentTypeResolver(s, resource.NewOverlay("/apps", "/libs"), 8, nil)
	catalog := framework.NewCatalog(s,
		resource.NewOverlay("/apps/fw", "/libs/fw"),
		resource.NewOverlay("/etc/vendor", "/libs/vendor"), 8, nil)
	typeCache := compile.NewComponentTypeCache(s)
	orch := compile.NewOrchestrator(compile.OrchestratorConfig{
		Catalog:        catalog,
		Views:          resolver.NewViewResolver(types, nil),
		Variations:     resolver.NewVariationResolver(s, types.Overlay(), nil),
		Types:          typeCache,
		Assets:         compile.NewAssets(s, nil, nil),
		ComponentRoots: []string{"/apps"},
	})

	h := &harness{store: s, types: typeCache}
	h.output = NewOutputCache(s, catalog, orch, cfg)
	h.output.sleep = func(ctx context.Context, _ time.Duration) error {
		h.sleeps++
		return ctx.Err()
	}
	return h
}

func TestCachePath(t *testing.T) {
	h := newHarness(t, "", Config{Root: "/var/cache/"})
	assert.Equal(t, "/var/cache/libs/fw/f.css", h.output.CachePath("/libs/fw/f", compile.CSS))
	assert.Equal(t, "/var/cache/libs/fw/f.js", h.output.CachePath("/libs/fw/f/", compile.JS))
	assert.Equal(t, "/var/cache/_manifest.msgpack", h.output.ManifestPath())

	def := newHarness(t, "", Config{})
	assert.Equal(t, DefaultRoot+"/libs/vendor/L.html", def.output.CachePath("/libs/vendor/L", compile.HTML))
}

func TestBuildAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture, Config{Root: "/var/cache"})

	manifest, err := h.output.BuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Attempts)
	assert.Empty(t, manifest.Failures)
	assert.Len(t, manifest.Entries, 9, "framework, vendor library and theme in three script types")

	tests := []struct {
		name    string
		library string
		st      compile.ScriptType
		want    string
	}{
		{"framework css", "/libs/fw/f", compile.CSS, ".L{}.self{}.V{}.Var{}"},
		{"framework js", "/libs/fw/f", compile.JS, "L();"},
		{"framework html", "/libs/fw/f", compile.HTML, "<p>v</p>"},
		{"vendor css", "/libs/vendor/L", compile.CSS, ".L{}"},
		{"theme css", "/libs/fw/f/themes/default", compile.CSS, ".L{}.self{}.V{}.Var{}.theme{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.output.GetCachedOutput(ctx, tt.library, tt.st)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			n, ok := h.store.Resolve(h.output.CachePath(tt.library, tt.st))
			require.True(t, ok)
			assert.Equal(t, tt.want, string(n.Content))
			assert.Equal(t, Fingerprint([]byte(tt.want)), n.String(PropFingerprint))
			assert.Equal(t, tt.library, n.String(PropLibrary))

			entry, ok := manifest.Lookup(tt.library, tt.st.String())
			require.True(t, ok)
			assert.Equal(t, n.String(PropFingerprint), entry.Fingerprint)
		})
	}

	stored, err := h.output.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(manifest.Entries), len(stored.Entries))
	assert.Equal(t, manifest.Attempts, stored.Attempts)
}

func TestGetCachedOutputNeverRecomputes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture, Config{Root: "/var/cache"})

	_, err := h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
	require.Error(t, err)
	assert.True(t, errors.IsCacheRetrieval(err))

	_, err = h.output.Manifest(ctx)
	assert.True(t, errors.IsCacheRetrieval(err))

	_, ok := h.store.Resolve("/var/cache/libs/fw/f.css")
	assert.False(t, ok, "a miss must not build the file")
}

func TestMemoryFront(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache(1<<20, 0)
	h := newHarness(t, fixture, Config{Root: "/var/cache", Memory: mem})

	require.NoError(t, h.output.Cache(ctx, mustFramework(t, h, "/libs/fw/f")))
	got, err := h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
	require.NoError(t, err)
	assert.Equal(t, ".L{}.self{}.V{}.Var{}", got)
	assert.Equal(t, int64(1), mem.Stats().Hits)

	require.NoError(t, h.output.Clear(ctx))
	assert.Equal(t, 0, mem.Stats().Entries)
	_, ok := h.store.Resolve("/var/cache")
	assert.False(t, ok)
	_, err = h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
	assert.True(t, errors.IsCacheRetrieval(err))
}

func TestBuildAllRetriesEmptyFrameworks(t *testing.T) {
	ctx := context.Background()

	t.Run("gives up after the attempt bound", func(t *testing.T) {
		h := newHarness(t, "", Config{Root: "/var/cache"})
		_, err := h.output.BuildAll(ctx)
		require.Error(t, err)

		var te *errors.ThematicError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, errors.ErrorTypeCacheBuild, te.Type)
		assert.Equal(t, DefaultAttempts-1, h.store.refreshes)
		assert.Equal(t, DefaultAttempts-1, h.sleeps)
	})

	t.Run("succeeds once frameworks appear", func(t *testing.T) {
		h := newHarness(t, "", Config{Root: "/var/cache", Attempts: 5})
		h.store.onRefresh = func(n int) {
			if n == 2 {
				nodes, err := resource.LoadYAML([]byte(fixture), "/")
				require.NoError(t, err)
				require.NoError(t, h.store.Load(ctx, nodes))
			}
		}
		manifest, err := h.output.BuildAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, manifest.Attempts)
		assert.Equal(t, 2, h.store.refreshes)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		h := newHarness(t, "", Config{Root: "/var/cache"})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := h.output.BuildAll(cctx)
		require.Error(t, err)
		assert.LessOrEqual(t, h.sleeps, 1)
	})
}

func TestBuildAllCollectsFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture, Config{Root: "/var/cache"})
	nodes, err := resource.LoadYAML([]byte(`
/libs/fw/g:
  _type: ui-framework
  code: g
  broken.css: {_content: "x"}
`), "/")
	require.NoError(t, err)
	require.NoError(t, h.store.Load(ctx, nodes))

	failing := compile.CompilerFunc(func(_ context.Context, _ compile.ScriptType, source string, content []byte) ([]byte, error) {
		if source == "/libs/fw/g/broken.css" {
			return nil, assert.AnError
		}
		return content, nil
	})
	types := resolver.NewComponentTypeResolver(h.store, resource.NewOverlay("/apps", "/libs"), 8, nil)
	h.output.orchestrator = compile.NewOrchestrator(compile.OrchestratorConfig{
		Catalog:        h.output.catalog,
		Views:          resolver.NewViewResolver(types, nil),
		Variations:     resolver.NewVariationResolver(h.store, types.Overlay(), nil),
		Types:          h.types,
		Assets:         compile.NewAssets(h.store, failing, nil),
		ComponentRoots: []string{"/apps"},
	})

	manifest, err := h.output.BuildAll(ctx)
	require.Error(t, err)
	assert.Len(t, manifest.Failures, 1)
	assert.Contains(t, manifest.Failures[0], "/libs/fw/g")

	got, err := h.output.GetCachedOutput(ctx, "/libs/fw/f", compile.CSS)
	require.NoError(t, err, "one broken library does not stop the rest")
	assert.Equal(t, ".L{}.self{}.V{}.Var{}", got)
	_, ok := h.store.Resolve("/var/cache/libs/fw/g.html")
	assert.False(t, ok, "staged writes of a failed library are discarded")
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(".a{}"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte(".a{}")))
	assert.NotEqual(t, a, Fingerprint([]byte(".b{}")))
}

func mustFramework(t *testing.T, h *harness, p string) model.Library {
	t.Helper()
	fw, err := h.output.catalog.ByPath(context.Background(), p)
	require.NoError(t, err)
	return fw
}
