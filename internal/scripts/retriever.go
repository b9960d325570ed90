package scripts

import (
	"context"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

// Retriever finds the script resource named name for a component type and
// framework.
type Retriever interface {
	GetScript(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error)

// GetScript calls f.
func (f RetrieverFunc) GetScript(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error) {
	return f(ctx, name, ct, fw)
}

// ViewRetriever looks scripts up as file children of component views. For
// each type of the lineage, the framework view is searched first and the
// common view second; a script missing from both moves the search to the
// supertype.
type ViewRetriever struct {
	views  *resolver.ViewResolver
	store  resource.Store
	logger logging.Logger
}

var _ Retriever = (*ViewRetriever)(nil)

// NewViewRetriever creates a retriever over the view resolver.
func NewViewRetriever(views *resolver.ViewResolver, logger logging.Logger) *ViewRetriever {
	return &ViewRetriever{
		views:  views,
		store:  views.Types().Store(),
		logger: logging.OrNop(logger).WithComponent("script_retriever"),
	}
}

// GetScript implements Retriever.
func (r *ViewRetriever) GetScript(ctx context.Context, name string, ct *model.ComponentType, fw *model.UiFramework) (*resource.Node, error) {
	if ct.Excludes(fw) && !ct.BypassFrameworkValidation {
		return nil, errors.ErrInvalidScript(name, ct.Path, fw.String()).WithContext("excluded", true)
	}
	overlay := r.views.Types().Overlay()
	for _, cur := range r.views.Types().Lineage(ctx, ct) {
		for _, view := range r.candidates(ctx, cur, fw) {
			n, ok := overlay.Child(r.store, view.Path, name)
			if ok && n.IsFile() {
				return n, nil
			}
		}
		r.logger.Debug(ctx, "Script not found on component type", "type", cur.Path, "script", name)
	}
	return nil, errors.ErrInvalidScript(name, ct.Path, fw.String())
}

func (r *ViewRetriever) candidates(ctx context.Context, ct *model.ComponentType, fw *model.UiFramework) []*model.ComponentUiFrameworkView {
	var out []*model.ComponentUiFrameworkView
	if v, ok := r.views.Match(ctx, ct, fw); ok {
		out = append(out, v)
	}
	if common, ok := r.views.Common(ct); ok && !containsView(out, common) {
		out = append(out, common)
	}
	return out
}

func containsView(views []*model.ComponentUiFrameworkView, v *model.ComponentUiFrameworkView) bool {
	for _, item := range views {
		if item.Path == v.Path {
			return true
		}
	}
	return false
}
