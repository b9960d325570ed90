// Package pagecontext determines the effective ui framework and theme of a
// render request.
package pagecontext

import (
	"context"
	"net/url"
	"strings"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// ParamUiFramework is the request parameter naming a framework code.
const ParamUiFramework = "ui-framework"

// Request carries what a render request contributes to resolution.
type Request struct {
	// PagePath is the content page being rendered.
	PagePath string
	Params   url.Values
}

// Identity identifies the request for caching: the page and the requested
// framework code.
func (r Request) Identity() string {
	id := resource.Clean(r.PagePath)
	if code := r.Params.Get(ParamUiFramework); code != "" {
		id += "?" + ParamUiFramework + "=" + code
	}
	return id
}

// Source records which step of the lookup chain produced the framework.
type Source string

const (
	SourcePage     Source = "page"
	SourceAncestor Source = "ancestor"
	SourceParam    Source = "param"
)

// Themed is the effective framework of a request. Theme is nil when the
// framework was chosen by request parameter.
type Themed struct {
	Framework *model.UiFramework
	Theme     *model.Theme
	Source    Source
	// From is the page carrying the theme property, or the parameter value.
	From string
}

// Resolver runs the themed page lookup chain.
type Resolver struct {
	store   resource.Store
	catalog *framework.Catalog
	logger  logging.Logger
}

// NewResolver creates a themed page resolver.
func NewResolver(store resource.Store, catalog *framework.Catalog, logger logging.Logger) *Resolver {
	return &Resolver{
		store:   store,
		catalog: catalog,
		logger:  logging.OrNop(logger).WithComponent("page_context"),
	}
}

// Resolve determines the effective framework: the theme property of the
// current page, then of the nearest ancestor carrying one, then the
// ui-framework request parameter matched against framework codes. Each step
// runs only when the previous one yielded nothing.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Themed, error) {
	if req.PagePath != "" {
		page := resource.Clean(req.PagePath)
		for p := page; ; p = resource.Parent(p) {
			if themed, ok := r.fromPage(ctx, p); ok {
				if p != page {
					themed.Source = SourceAncestor
				}
				return themed, nil
			}
			if p == "/" {
				break
			}
		}
	}

	if code := strings.TrimSpace(req.Params.Get(ParamUiFramework)); code != "" {
		fw, err := r.catalog.ByCode(ctx, code)
		if err == nil {
			return &Themed{Framework: fw, Source: SourceParam, From: code}, nil
		}
		r.logger.Debug(ctx, "Request parameter names no framework", "code", code)
	}
	return nil, errors.ErrFrameworkNotFound(req.Identity()).WithContext("page", req.PagePath)
}

func (r *Resolver) fromPage(ctx context.Context, p string) (*Themed, bool) {
	n, ok := r.store.Resolve(p)
	if !ok {
		return nil, false
	}
	ref := strings.TrimSpace(n.String(model.PropTheme))
	if ref == "" {
		return nil, false
	}

	if theme, err := r.catalog.ThemeByPath(ctx, ref); err == nil {
		return &Themed{Framework: theme.Framework, Theme: theme, Source: SourcePage, From: p}, true
	}
	if fw, err := r.catalog.ByPath(ctx, ref); err == nil {
		theme, _ := r.catalog.DefaultTheme(ctx, fw)
		return &Themed{Framework: fw, Theme: theme, Source: SourcePage, From: p}, true
	}
	r.logger.Warn(ctx, errors.ErrThemeNotFound(ref, ref), "Page theme property does not resolve", "page", p, "theme", ref)
	return nil, false
}
