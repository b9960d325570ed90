// Package resolver implements the fallback resolution of component types,
// their per-framework views and their variations over a two-root overlay.
//
// Each lookup step returns a narrow, path-carrying error so that callers can
// move on to the next fallback step; only the last step's failure surfaces.
package resolver

import (
	"context"
	"strings"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// DefaultMaxDepth bounds supertype walks when no depth is configured.
const DefaultMaxDepth = 32

// ComponentTypeResolver resolves component type definitions.
type ComponentTypeResolver struct {
	store    resource.Store
	overlay  resource.Overlay
	maxDepth int
	logger   logging.Logger
}

// NewComponentTypeResolver creates a resolver over the overlay roots.
func NewComponentTypeResolver(store resource.Store, overlay resource.Overlay, maxDepth int, logger logging.Logger) *ComponentTypeResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ComponentTypeResolver{
		store:    store,
		overlay:  overlay,
		maxDepth: maxDepth,
		logger:   logging.OrNop(logger).WithComponent("component_type_resolver"),
	}
}

// Store returns the backing store.
func (r *ComponentTypeResolver) Store() resource.Store { return r.store }

// Overlay returns the overlay roots.
func (r *ComponentTypeResolver) Overlay() resource.Overlay { return r.overlay }

// MaxDepth returns the supertype walk bound.
func (r *ComponentTypeResolver) MaxDepth() int { return r.maxDepth }

// Resolve finds the component type for a name that is either an absolute
// path or relative to the overlay roots. Candidates are tried as given, then
// under the override root, then under the base root. A candidate with a
// different type tag is logged and skipped.
func (r *ComponentTypeResolver) Resolve(ctx context.Context, name string) (*model.ComponentType, error) {
	name = strings.TrimSpace(name)
	for _, p := range r.overlay.Candidates(name) {
		ct, a := model.AdaptComponentType(r.store, p)
		switch a.Status {
		case resource.Found:
			return ct, nil
		case resource.WrongType:
			r.logger.Warn(ctx, errors.ErrInvalidResourceType(p, model.TagComponent),
				"Candidate is not a component type", "path", p, "type", a.Node.Type)
		}
	}
	return nil, errors.ErrComponentTypeNotFound(name)
}

// ResolveParent returns the component type owning view.
func (r *ComponentTypeResolver) ResolveParent(ctx context.Context, view *model.ComponentUiFrameworkView) (*model.ComponentType, error) {
	if view == nil {
		return nil, errors.ErrComponentTypeNotFound("<nil view>")
	}
	owner := view.OwnerPath()
	ct, a := model.AdaptComponentType(r.store, owner)
	if !a.OK() {
		if a.Status == resource.WrongType {
			r.logger.Warn(ctx, errors.ErrInvalidResourceType(owner, model.TagComponent),
				"View parent is not a component type", "view", view.Path)
		}
		return nil, errors.ErrComponentTypeNotFound(owner).WithContext("view", view.Path)
	}
	return ct, nil
}

// Normalize re-resolves ct by its path relative to the overlay roots, so a
// base type with an override counterpart yields the override type.
func (r *ComponentTypeResolver) Normalize(ctx context.Context, ct *model.ComponentType) (*model.ComponentType, error) {
	rel, layer := r.overlay.Relative(ct.Path)
	if layer == resource.LayerNone || rel == "" {
		return ct, nil
	}
	return r.Resolve(ctx, rel)
}

// Validate checks the invariants of a single component type.
func (r *ComponentTypeResolver) Validate(ct *model.ComponentType) error {
	if ct.SupertypesItself(r.overlay) {
		return errors.ErrSelfSupertype(ct.Path).WithContext("superType", ct.SuperType)
	}
	return nil
}

// Supertype resolves the direct supertype of ct.
func (r *ComponentTypeResolver) Supertype(ctx context.Context, ct *model.ComponentType) (*model.ComponentType, error) {
	if !ct.HasSupertype() {
		return nil, errors.ErrComponentTypeNotFound("").WithContext("subtype", ct.Path)
	}
	if err := r.Validate(ct); err != nil {
		return nil, err
	}
	super, err := r.Resolve(ctx, ct.SuperType)
	if err != nil {
		return nil, err
	}
	if super.Path == ct.Path {
		return nil, errors.ErrSelfSupertype(ct.Path).WithContext("superType", ct.SuperType)
	}
	return super, nil
}

// Supertypes returns the supertype chain of ct, nearest first, excluding ct.
// The walk stops at the first unresolvable reference, at a type already
// visited, or after MaxDepth steps.
func (r *ComponentTypeResolver) Supertypes(ctx context.Context, ct *model.ComponentType) []*model.ComponentType {
	var chain []*model.ComponentType
	visited := map[string]bool{ct.Path: true}
	cur := ct
	for depth := 0; depth < r.maxDepth && cur.HasSupertype(); depth++ {
		super, err := r.Supertype(ctx, cur)
		if err != nil {
			r.logger.Debug(ctx, "Supertype walk stopped", "type", cur.Path, "superType", cur.SuperType, "error", err)
			return chain
		}
		if visited[super.Path] {
			r.logger.Warn(ctx, nil, "Supertype cycle detected", "type", ct.Path, "at", super.Path)
			return chain
		}
		visited[super.Path] = true
		chain = append(chain, super)
		cur = super
	}
	if cur.HasSupertype() && len(chain) == r.maxDepth {
		r.logger.Warn(ctx, nil, "Supertype walk exceeded maximum depth", "type", ct.Path, "max_depth", r.maxDepth)
	}
	return chain
}

// Lineage returns ct followed by its supertype chain.
func (r *ComponentTypeResolver) Lineage(ctx context.Context, ct *model.ComponentType) []*model.ComponentType {
	return append([]*model.ComponentType{ct}, r.Supertypes(ctx, ct)...)
}
