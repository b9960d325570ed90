package framework

import (
	"context"
	"path"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// Themes lists the themes of fw in store order. A framework version that
// declares no themes inherits those of the nearest earlier version that
// does, presented as virtual themes of fw; the managing framework's own
// themes are the last resort.
func (c *Catalog) Themes(ctx context.Context, fw *model.UiFramework) []*model.Theme {
	if own := c.ownThemes(fw); len(own) > 0 || !fw.IsVersion() {
		return own
	}

	versions := c.Versions(ctx, fw.Parent)
	idx := -1
	for i, v := range versions {
		if v.Path == fw.Path {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		if inherited := c.ownThemes(versions[i]); len(inherited) > 0 {
			c.logger.Debug(ctx, "Inheriting themes from earlier version",
				"framework", fw.Path, "from", versions[i].Path)
			return virtualize(inherited, fw)
		}
	}
	if inherited := c.ownThemes(fw.Parent); len(inherited) > 0 {
		return virtualize(inherited, fw)
	}
	return nil
}

// Theme returns the named theme of fw, virtual themes included.
func (c *Catalog) Theme(ctx context.Context, fw *model.UiFramework, name string) (*model.Theme, error) {
	for _, t := range c.Themes(ctx, fw) {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, errors.ErrThemeNotFound(fw.Path, name)
}

// DefaultTheme returns the theme named "default", or the first theme when
// the framework has none of that name.
func (c *Catalog) DefaultTheme(ctx context.Context, fw *model.UiFramework) (*model.Theme, error) {
	themes := c.Themes(ctx, fw)
	for _, t := range themes {
		if t.IsDefault() {
			return t, nil
		}
	}
	if len(themes) > 0 {
		c.logger.Warn(ctx, nil, "Framework has no default theme", "framework", fw.Path, "using", themes[0].Name)
		return themes[0], nil
	}
	return nil, errors.ErrThemeNotFound(fw.Path, model.DefaultTheme)
}

// ThemeByPath resolves a theme reference. Paths of virtual themes, which have
// no node of their own, resolve through their framework.
func (c *Catalog) ThemeByPath(ctx context.Context, p string) (*model.Theme, error) {
	p = resource.Clean(p)
	themes := resource.Parent(p)
	if path.Base(themes) != model.ThemesFolder {
		return nil, errors.ErrThemeNotFound(p, path.Base(p))
	}
	fw, err := c.ByPath(ctx, resource.Parent(themes))
	if err != nil {
		return nil, errors.ErrThemeNotFound(p, path.Base(p)).WithCause(err)
	}
	return c.Theme(ctx, fw, path.Base(p))
}

// AllThemes lists the themes of every buildable framework.
func (c *Catalog) AllThemes(ctx context.Context) []*model.Theme {
	var out []*model.Theme
	for _, fw := range c.Frameworks(ctx) {
		out = append(out, c.Themes(ctx, fw)...)
	}
	return out
}

func (c *Catalog) ownThemes(fw *model.UiFramework) []*model.Theme {
	var out []*model.Theme
	for _, n := range c.frameworks.MergedChildren(c.store, fw.ThemesPath()) {
		if a := resource.AdaptNode(n, model.TagTheme); a.OK() {
			out = append(out, model.NewTheme(fw, n))
		}
	}
	return out
}

func virtualize(themes []*model.Theme, fw *model.UiFramework) []*model.Theme {
	out := make([]*model.Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, model.NewVirtualTheme(t, fw))
	}
	return out
}
