package resolver

import (
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// VariationResolver resolves the variations attached to a view.
type VariationResolver struct {
	store   resource.Store
	overlay resource.Overlay
	logger  logging.Logger
}

// NewVariationResolver creates a variation resolver.
func NewVariationResolver(store resource.Store, overlay resource.Overlay, logger logging.Logger) *VariationResolver {
	return &VariationResolver{
		store:   store,
		overlay: overlay,
		logger:  logging.OrNop(logger).WithComponent("variation_resolver"),
	}
}

// Resolve returns the variations of view in store order. A view without a
// variations container has none.
func (r *VariationResolver) Resolve(view *model.ComponentUiFrameworkView) []*model.ComponentVariation {
	if view == nil {
		return nil
	}
	var out []*model.ComponentVariation
	for _, n := range r.overlay.MergedChildren(r.store, view.VariationsPath()) {
		if a := resource.AdaptNode(n, model.TagVariation); a.OK() {
			out = append(out, model.NewVariation(n))
		}
	}
	return out
}

// Defaults returns the default variations of view in store order.
func (r *VariationResolver) Defaults(view *model.ComponentUiFrameworkView) []*model.ComponentVariation {
	var out []*model.ComponentVariation
	for _, v := range r.Resolve(view) {
		if v.Default {
			out = append(out, v)
		}
	}
	return out
}

// Applied returns the variations applied to a component instance. An
// instance without a variations property gets the defaults; otherwise the
// listed variations are returned in variation order and unknown names are
// dropped.
func (r *VariationResolver) Applied(view *model.ComponentUiFrameworkView, instance *resource.Node) []*model.ComponentVariation {
	if instance == nil || !instance.Has(model.PropVariations) {
		return r.Defaults(view)
	}
	requested := make(map[string]bool)
	for _, name := range instance.Strings(model.PropVariations) {
		requested[name] = true
	}
	out := []*model.ComponentVariation{}
	for _, v := range r.Resolve(view) {
		if requested[v.Name] {
			out = append(out, v)
		}
	}
	return out
}
