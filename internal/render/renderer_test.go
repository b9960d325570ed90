package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/pagecontext"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
	"github.com/conneroisu/thematic/internal/scripts"
)

const pageFixture = `
/libs/fw/bs:
  _type: ui-framework
  code: bootstrap
/apps/button:
  _type: component
  componentGroup: content
  bootstrap:
    _type: component-view
    body.html: {_content: "<button class=\"btn\">Go</button>"}
    variations:
      outline:
        _type: variation
        default: true
      large:
        _type: variation
        inline: true
        class: btn-lg
/apps/grid:
  _type: component
  allowedGroups: [layout]
/apps/panel:
  _type: component
  allowedGroups: [content]
/content/site:
  theme: /libs/fw/bs
  page:
    button1:
      resourceType: button
      variations: [large]
    grid1:
      resourceType: grid
      button2: {resourceType: button}
    panel1:
      resourceType: panel
      button3: {resourceType: button}
`

func newRenderer(t *testing.T) (*Renderer, resource.Store) {
	t.Helper()
	nodes, err := resource.LoadYAML([]byte(pageFixture), "/")
	require.NoError(t, err)
	s := resource.NewMemoryStore()
	require.NoError(t, s.Load(context.Background(), nodes))

	types := resolver.NewComponentTypeResolver(s, resource.NewOverlay("/apps", "/libs"), 8, nil)
	views := resolver.NewViewResolver(types, nil)
	catalog := framework.NewCatalog(s,
		resource.NewOverlay("/apps/fw", "/libs/fw"),
		resource.NewOverlay("/etc/vendor", "/libs/vendor"), 8, nil)
	pages := pagecontext.NewResolver(s, catalog, nil)
	paths := scripts.NewPathResolver(types, pages, scripts.NewViewRetriever(views, nil), scripts.NewMapCache(), nil)

	return NewRenderer(RendererConfig{
		Store:     s,
		Views:     views,
		Pages:     pages,
		Scripts:   paths,
		Decorator: NewDecorator(resolver.NewVariationResolver(s, types.Overlay(), nil), nil),
	}), s
}

func TestRendererRender(t *testing.T) {
	r, s := newRenderer(t)
	ctx := context.Background()
	instance := func(p string) *resource.Node {
		n, ok := s.Resolve(p)
		require.True(t, ok, p)
		return n
	}

	t.Run("listed inline variation", func(t *testing.T) {
		c, err := r.Render(ctx, instance("/content/site/page/button1"), "body.html", pagecontext.Request{})
		require.NoError(t, err)
		assert.Equal(t, `<button class="btn btn-lg">Go</button>`, render(t, c))
	})

	t.Run("defaults inside an allowing container", func(t *testing.T) {
		c, err := r.Render(ctx, instance("/content/site/page/panel1/button3"), "body.html", pagecontext.Request{})
		require.NoError(t, err)
		assert.Equal(t, `<div class="outline"><button class="btn">Go</button></div>`, render(t, c))
	})

	t.Run("container rejects the component group", func(t *testing.T) {
		_, err := r.Render(ctx, instance("/content/site/page/grid1/button2"), "body.html", pagecontext.Request{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrComponentNotAllowedSentinel)
	})

	t.Run("missing script", func(t *testing.T) {
		_, err := r.Render(ctx, instance("/content/site/page/button1"), "missing.html", pagecontext.Request{})
		assert.ErrorIs(t, err, scripts.ErrScriptNotFound)
	})
}

func TestRendererPlacement(t *testing.T) {
	r, s := newRenderer(t)
	ctx := context.Background()
	button, err := r.types.Resolve(ctx, "button")
	require.NoError(t, err)

	top, _ := s.Resolve("/content/site/page/button1")
	assert.NoError(t, r.Placement(ctx, top, button), "untyped parent accepts everything")

	inGrid, _ := s.Resolve("/content/site/page/grid1/button2")
	assert.ErrorIs(t, r.Placement(ctx, inGrid, button), errors.ErrComponentNotAllowedSentinel)
}
