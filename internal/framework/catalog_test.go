package framework

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

const catalogFixture = `
/libs/fw:
  plain:
    _type: ui-framework
    code: plain
    vendorLibraries: [app]
    themes:
      dark: {_type: theme}
      default: {_type: theme}
  group:
    nested:
      _type: ui-framework
      code: nested
  bootstrap:
    _type: managed-ui-framework
    title: Bootstrap
    code: bs
    fontAwesomeIcon: fa-b
    themes:
      legacy: {_type: theme}
    versions:
      10.0.0:
        _type: ui-framework
      4.6.0:
        _type: ui-framework
        themes:
          default: {_type: theme}
      5.3.0:
        _type: ui-framework
        title: Bootstrap Five
  old:
    _type: managed-ui-framework
    code: old
    themes:
      classic: {_type: theme}
    versions:
      1.0.0: {_type: ui-framework}
/apps/fw:
  plain:
    _type: ui-framework
    code: plain-override
/libs/vendor:
  jquery: {_type: vendor-library}
  popper: {_type: vendor-library}
  app:
    _type: vendor-library
    dependencies: [widgets, jquery]
  widgets:
    _type: vendor-library
    dependencies: [jquery, popper, missing]
  cycle-a: {_type: vendor-library, dependencies: [cycle-b]}
  cycle-b: {_type: vendor-library, dependencies: [cycle-a]}
/etc/vendor:
  popper: {_type: vendor-library, from: etc}
`

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	nodes, err := resource.LoadYAML([]byte(catalogFixture), "/")
	require.NoError(t, err)
	s := resource.NewMemoryStore()
	require.NoError(t, s.Load(context.Background(), nodes))
	return NewCatalog(s,
		resource.NewOverlay("/apps/fw", "/libs/fw"),
		resource.NewOverlay("/etc/vendor", "/libs/vendor"),
		8, nil)
}

func paths(fws []*model.UiFramework) []string {
	var out []string
	for _, fw := range fws {
		out = append(out, fw.Path)
	}
	return out
}

func TestFrameworks(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	assert.Equal(t, []string{
		"/apps/fw/plain",
		"/libs/fw/group/nested",
		"/libs/fw/bootstrap/versions/10.0.0",
		"/libs/fw/bootstrap/versions/5.3.0",
		"/libs/fw/bootstrap/versions/4.6.0",
		"/libs/fw/old/versions/1.0.0",
	}, paths(c.Frameworks(ctx)))

	assert.Equal(t, []string{"/libs/fw/bootstrap", "/libs/fw/old"}, paths(c.ManagedFrameworks(ctx)))

	t.Run("versions inherit from managing parent", func(t *testing.T) {
		fw, err := c.ByPath(ctx, "/libs/fw/bootstrap/versions/5.3.0")
		require.NoError(t, err)
		assert.Equal(t, "bs", fw.Code)
		assert.Equal(t, "fa-b", fw.Icon)
		assert.Equal(t, "Bootstrap Five", fw.Title)
		require.NotNil(t, fw.Parent)
		assert.Equal(t, "/libs/fw/bootstrap", fw.Parent.Path)
	})

	t.Run("by code", func(t *testing.T) {
		fw, err := c.ByCode(ctx, "bs")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0", fw.Version, "latest version wins")

		_, err = c.ByCode(ctx, "nope")
		assert.ErrorIs(t, err, errors.ErrFrameworkNotFoundSentinel)
	})

	t.Run("by path misses", func(t *testing.T) {
		_, err := c.ByPath(ctx, "/libs/fw/group")
		assert.ErrorIs(t, err, errors.ErrFrameworkNotFoundSentinel)
	})
}

func TestThemes(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	names := func(themes []*model.Theme) []string {
		var out []string
		for _, th := range themes {
			out = append(out, th.Name)
		}
		return out
	}

	t.Run("own themes in store order", func(t *testing.T) {
		fw, _ := c.ByPath(ctx, "/libs/fw/plain")
		assert.Equal(t, []string{"dark", "default"}, names(c.Themes(ctx, fw)))
		def, err := c.DefaultTheme(ctx, fw)
		require.NoError(t, err)
		assert.Equal(t, "/libs/fw/plain/themes/default", def.Path)
		assert.False(t, def.Virtual)
	})

	t.Run("virtual themes from earlier version", func(t *testing.T) {
		fw, _ := c.ByPath(ctx, "/libs/fw/bootstrap/versions/10.0.0")
		themes := c.Themes(ctx, fw)
		require.Len(t, themes, 1)
		th := themes[0]
		assert.True(t, th.Virtual)
		assert.Equal(t, "/libs/fw/bootstrap/versions/10.0.0/themes/default", th.LibraryPath())
		assert.Equal(t, "/libs/fw/bootstrap/versions/4.6.0/themes/default", th.SourcePath())
		assert.Equal(t, "4.6.0", th.Origin.Version)
		assert.Same(t, fw, th.Framework)

		byPath, err := c.ThemeByPath(ctx, th.LibraryPath())
		require.NoError(t, err)
		assert.Equal(t, th.SourcePath(), byPath.SourcePath())
	})

	t.Run("earliest version falls back to managing framework", func(t *testing.T) {
		fw, _ := c.ByPath(ctx, "/libs/fw/old/versions/1.0.0")
		themes := c.Themes(ctx, fw)
		assert.Equal(t, []string{"classic"}, names(themes))
		assert.True(t, themes[0].Virtual)

		def, err := c.DefaultTheme(ctx, fw)
		require.NoError(t, err)
		assert.Equal(t, "classic", def.Name)
	})

	t.Run("missing theme", func(t *testing.T) {
		fw, _ := c.ByPath(ctx, "/libs/fw/group/nested")
		_, err := c.Theme(ctx, fw, "default")
		assert.ErrorIs(t, err, errors.ErrThemeNotFoundSentinel)
		_, err = c.DefaultTheme(ctx, fw)
		assert.ErrorIs(t, err, errors.ErrThemeNotFoundSentinel)
		_, err = c.ThemeByPath(ctx, "/libs/fw/plain/default")
		assert.ErrorIs(t, err, errors.ErrThemeNotFoundSentinel)
	})
}

func TestVendorLibraries(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	libPaths := func(libs []*model.VendorLibrary) []string {
		var out []string
		for _, l := range libs {
			out = append(out, l.Path)
		}
		return out
	}

	t.Run("etc overrides libs", func(t *testing.T) {
		lib, err := c.VendorLibrary(ctx, "popper")
		require.NoError(t, err)
		assert.Equal(t, "etc", lib.Node.String("from"))

		_, err = c.VendorLibrary(ctx, "missing")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("dependencies first, each once", func(t *testing.T) {
		assert.Equal(t, []string{
			"/libs/vendor/jquery",
			"/etc/vendor/popper",
			"/libs/vendor/widgets",
			"/libs/vendor/app",
		}, libPaths(c.Closure(ctx, []string{"app", "jquery"})))
	})

	t.Run("cycles terminate", func(t *testing.T) {
		assert.Equal(t, []string{"/libs/vendor/cycle-b", "/libs/vendor/cycle-a"},
			libPaths(c.Closure(ctx, []string{"cycle-a"})))
	})

	t.Run("listed order kept", func(t *testing.T) {
		assert.Equal(t, []string{
			"/etc/vendor/popper",
			"/libs/vendor/widgets",
			"/libs/vendor/app",
			"/libs/vendor/jquery",
		}, libPaths(c.Ordered(ctx, []string{"app", "jquery"})))
		assert.Equal(t, []string{
			"/libs/vendor/jquery",
			"/etc/vendor/popper",
			"/libs/vendor/widgets",
			"/libs/vendor/app",
		}, libPaths(c.Ordered(ctx, []string{"jquery", "app"})))
	})

	t.Run("framework libraries", func(t *testing.T) {
		fw, _ := c.ByPath(ctx, "/libs/fw/plain")
		assert.Len(t, c.FrameworkLibraries(ctx, fw), 4)
	})

	assert.Len(t, c.VendorLibraries(ctx), 6)
}
