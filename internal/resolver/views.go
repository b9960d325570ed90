package resolver

import (
	"context"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// ViewResolver resolves the view of a component type for a ui framework.
type ViewResolver struct {
	store   resource.Store
	overlay resource.Overlay
	types   *ComponentTypeResolver
	logger  logging.Logger
}

// NewViewResolver creates a view resolver sharing the type resolver's store
// and overlay.
func NewViewResolver(types *ComponentTypeResolver, logger logging.Logger) *ViewResolver {
	return &ViewResolver{
		store:   types.Store(),
		overlay: types.Overlay(),
		types:   types,
		logger:  logging.OrNop(logger).WithComponent("view_resolver"),
	}
}

// Types returns the component type resolver.
func (r *ViewResolver) Types() *ComponentTypeResolver { return r.types }

// Resolve returns the view of ct for fw. The child named by the framework
// code is tried first, then the child named by its display name, then the
// common view of the normalized component type unless ct bypasses framework
// validation.
func (r *ViewResolver) Resolve(ctx context.Context, ct *model.ComponentType, fw *model.UiFramework) (*model.ComponentUiFrameworkView, error) {
	if v, ok := r.Match(ctx, ct, fw); ok {
		return v, nil
	}
	if !ct.BypassFrameworkValidation {
		normalized, err := r.types.Normalize(ctx, ct)
		if err != nil {
			r.logger.Debug(ctx, "Could not normalize component type", "type", ct.Path, "error", err)
			normalized = ct
		}
		if v, ok := r.Common(normalized); ok {
			return v, nil
		}
	}
	return nil, errors.ErrInvalidView(ct.Path, fw.String())
}

// Match looks up the framework-specific view of ct by code, then by display
// name. The common view is not considered.
//
// For a version of a managed framework a managed view only matches through
// its version child of the same version; a plain view matches every version.
func (r *ViewResolver) Match(ctx context.Context, ct *model.ComponentType, fw *model.UiFramework) (*model.ComponentUiFrameworkView, bool) {
	for _, name := range frameworkNames(fw) {
		v, ok := r.child(ct.Path, name)
		if !ok {
			continue
		}
		if fw.IsVersion() && v.Managed {
			versioned, ok := r.version(v, fw.Version)
			if !ok {
				r.logger.Debug(ctx, "Managed view lacks framework version", "view", v.Path, "version", fw.Version)
				continue
			}
			return versioned, true
		}
		return v, true
	}
	return nil, false
}

// ResolveManaged returns the managing view of ct for the framework code. The
// view must carry a versions container.
func (r *ViewResolver) ResolveManaged(ctx context.Context, ct *model.ComponentType, fw *model.UiFramework) (*model.ComponentUiFrameworkView, error) {
	v, ok := r.child(ct.Path, fw.Code)
	if !ok {
		return nil, errors.ErrInvalidView(ct.Path, fw.Code)
	}
	if !v.Managed {
		return nil, errors.ErrInvalidResourceType(v.Path, "managed component view")
	}
	return v, nil
}

// ViewFor is the composite lookup renderers use: the framework view by code
// or display name, then the type's own common view, then the same steps on
// each supertype. Frameworks the type excludes fail unless it bypasses
// framework validation.
func (r *ViewResolver) ViewFor(ctx context.Context, ct *model.ComponentType, fw *model.UiFramework) (*model.ComponentUiFrameworkView, error) {
	if ct.Excludes(fw) && !ct.BypassFrameworkValidation {
		return nil, errors.ErrInvalidView(ct.Path, fw.String()).WithContext("excluded", true)
	}
	for _, cur := range r.types.Lineage(ctx, ct) {
		if v, ok := r.Match(ctx, cur, fw); ok {
			return v, nil
		}
		if v, ok := r.Common(cur); ok {
			return v, nil
		}
	}
	return nil, errors.ErrInvalidComponentUiFrameworkView(ct.Path, fw.String())
}

// Views lists every view of ct, override views first.
func (r *ViewResolver) Views(ct *model.ComponentType) []*model.ComponentUiFrameworkView {
	var out []*model.ComponentUiFrameworkView
	for _, n := range r.overlay.MergedChildren(r.store, ct.Path) {
		if a := resource.AdaptNode(n, model.TagComponentView); a.OK() {
			out = append(out, model.NewView(r.store, n))
		}
	}
	return out
}

// Common returns the common view of ct.
func (r *ViewResolver) Common(ct *model.ComponentType) (*model.ComponentUiFrameworkView, bool) {
	return r.child(ct.Path, model.CommonView)
}

func (r *ViewResolver) child(parent, name string) (*model.ComponentUiFrameworkView, bool) {
	n, ok := r.overlay.Child(r.store, parent, name)
	if !ok {
		return nil, false
	}
	if a := resource.AdaptNode(n, model.TagComponentView); !a.OK() {
		return nil, false
	}
	return model.NewView(r.store, n), true
}

func (r *ViewResolver) version(managed *model.ComponentUiFrameworkView, version string) (*model.ComponentUiFrameworkView, bool) {
	return r.child(resource.Join(managed.Path, model.VersionsFolder), version)
}

func frameworkNames(fw *model.UiFramework) []string {
	names := []string{fw.Code}
	if fw.Title != "" && fw.Title != fw.Code {
		names = append(names, fw.Title)
	}
	return names
}
