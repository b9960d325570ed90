package render

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/pagecontext"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
	"github.com/conneroisu/thematic/internal/scripts"
)

// Renderer renders component instances: it resolves the instance's script,
// checks the instance may sit in its container and decorates the script
// markup with the applied variations.
type Renderer struct {
	store     resource.Store
	types     *resolver.ComponentTypeResolver
	views     *resolver.ViewResolver
	pages     *pagecontext.Resolver
	scripts   *scripts.PathResolver
	decorator *Decorator
	logger    logging.Logger
}

// RendererConfig wires a Renderer.
type RendererConfig struct {
	Store     resource.Store
	Views     *resolver.ViewResolver
	Pages     *pagecontext.Resolver
	Scripts   *scripts.PathResolver
	Decorator *Decorator
	Logger    logging.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(cfg RendererConfig) *Renderer {
	return &Renderer{
		store:     cfg.Store,
		types:     cfg.Views.Types(),
		views:     cfg.Views,
		pages:     cfg.Pages,
		scripts:   cfg.Scripts,
		decorator: cfg.Decorator,
		logger:    logging.OrNop(cfg.Logger).WithComponent("renderer"),
	}
}

// Render returns the decorated markup of the script named script for
// instance. The script content is emitted as is.
func (r *Renderer) Render(ctx context.Context, instance *resource.Node, script string, req pagecontext.Request) (templ.Component, error) {
	if req.PagePath == "" && instance != nil {
		req.PagePath = instance.Path
	}
	p, err := r.scripts.GetScriptPath(ctx, instance, script, req)
	if err != nil {
		return nil, err
	}
	node, ok := r.store.Resolve(p)
	if !ok || !node.IsFile() {
		return nil, errors.ErrResourceNotFound(p)
	}

	ct, err := r.types.Resolve(ctx, instance.String(model.PropResourceType))
	if err != nil {
		return nil, errors.ErrInvalidComponentType(instance.Path, err)
	}
	if err := r.Placement(ctx, instance, ct); err != nil {
		return nil, err
	}

	themed, err := r.pages.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	view, err := r.views.ViewFor(ctx, ct, themed.Framework)
	if err != nil {
		return nil, err
	}
	return r.decorator.Decorate(view, instance, templ.Raw(string(node.Content))), nil
}

// Placement checks instance of type ct against the allowed and excluded
// types and groups of its parent instance. A parent without a resolvable
// component type accepts everything.
func (r *Renderer) Placement(ctx context.Context, instance *resource.Node, ct *model.ComponentType) error {
	parent, ok := r.store.Resolve(resource.Parent(instance.Path))
	if !ok {
		return nil
	}
	name := strings.TrimSpace(parent.String(model.PropResourceType))
	if name == "" {
		return nil
	}
	container, err := r.types.Resolve(ctx, name)
	if err != nil {
		r.logger.Debug(ctx, "Container type not resolvable", "container", parent.Path, "type", name)
		return nil
	}
	if !container.Allows(ct) {
		return errors.ErrComponentNotAllowed(instance.Path, ct.Path, container.Path)
	}
	return nil
}
