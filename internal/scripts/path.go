package scripts

import (
	"context"
	"strings"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/pagecontext"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

// ErrScriptNotFound matches every script retrieval failure returned by
// PathResolver.
var ErrScriptNotFound = errors.ErrInvalidScriptSentinel

// PathResolver resolves script paths for component instances through the
// cache.
type PathResolver struct {
	types     *resolver.ComponentTypeResolver
	pages     *pagecontext.Resolver
	retriever Retriever
	cache     Cache
	logger    logging.Logger
}

// NewPathResolver creates a path resolver.
func NewPathResolver(types *resolver.ComponentTypeResolver, pages *pagecontext.Resolver, retriever Retriever, cache Cache, logger logging.Logger) *PathResolver {
	if cache == nil {
		cache = NewMapCache()
	}
	return &PathResolver{
		types:     types,
		pages:     pages,
		retriever: retriever,
		cache:     cache,
		logger:    logging.OrNop(logger).WithComponent("script_path_resolver"),
	}
}

// Cache returns the path cache.
func (r *PathResolver) Cache() Cache { return r.cache }

// GetScriptPath returns the path of the script named scriptName rendering
// component for req. The component's resourceType names its component type;
// the framework comes from the themed page lookup chain. Cached paths are
// returned without consulting the retriever.
func (r *PathResolver) GetScriptPath(ctx context.Context, component *resource.Node, scriptName string, req pagecontext.Request) (string, error) {
	generation := r.cache.Generation()
	if component == nil {
		return "", errors.ErrInvalidComponentType("", nil)
	}
	typeName := strings.TrimSpace(component.String(model.PropResourceType))
	if typeName == "" {
		return "", errors.ErrInvalidComponentType(component.Path, nil).WithContext("reason", "missing resourceType")
	}
	ct, err := r.types.Resolve(ctx, typeName)
	if err != nil {
		return "", errors.ErrInvalidComponentType(component.Path, err)
	}
	if req.PagePath == "" {
		req.PagePath = component.Path
	}
	themed, err := r.pages.Resolve(ctx, req)
	if err != nil {
		r.logger.Warn(ctx, err, "No ui framework for request", "component", component.Path)
		return "", errors.ErrInvalidScript(scriptName, ct.Path, "").WithCause(err)
	}

	return r.lookup(ctx, generation, req.Identity(), scriptName, ct, themed.Framework)
}

// Lookup resolves a script for an already resolved component type and
// framework, caching under identity.
func (r *PathResolver) Lookup(ctx context.Context, identity, scriptName string, ct *model.ComponentType, fw *model.UiFramework) (string, error) {
	return r.lookup(ctx, r.cache.Generation(), identity, scriptName, ct, fw)
}

func (r *PathResolver) lookup(ctx context.Context, generation uint64, identity, scriptName string, ct *model.ComponentType, fw *model.UiFramework) (string, error) {
	key := Key(identity, fw.Path, ct.Path, scriptName)
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	script, err := r.retriever.GetScript(ctx, scriptName, ct, fw)
	if err != nil || script == nil {
		r.logger.Warn(ctx, err, "Script retrieval failed",
			"script", scriptName, "type", ct.Path, "framework", fw.Path)
		return "", errors.ErrInvalidScript(scriptName, ct.Path, fw.String()).WithCause(err)
	}
	r.cache.Put(generation, key, script.Path)
	return script.Path, nil
}

// InvalidateAll drops every cached path.
func (r *PathResolver) InvalidateAll() {
	r.cache.InvalidateAll()
}
