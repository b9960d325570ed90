package compile

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

// Orchestrator produces the aggregate output of a library.
type Orchestrator struct {
	catalog    *framework.Catalog
	views      *resolver.ViewResolver
	variations *resolver.VariationResolver
	types      *ComponentTypeCache
	assets     *Assets
	roots      []string
	logger     logging.Logger
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Catalog    *framework.Catalog
	Views      *resolver.ViewResolver
	Variations *resolver.VariationResolver
	Types      *ComponentTypeCache
	Assets     *Assets
	// ComponentRoots are scanned in order: the override root first, then
	// each base subtree.
	ComponentRoots []string
	Logger         logging.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		catalog:    cfg.Catalog,
		views:      cfg.Views,
		variations: cfg.Variations,
		types:      cfg.Types,
		assets:     cfg.Assets,
		roots:      cfg.ComponentRoots,
		logger:     logging.OrNop(cfg.Logger).WithComponent("orchestrator"),
	}
}

// ComponentTypes returns the component type cache.
func (o *Orchestrator) ComponentTypes() *ComponentTypeCache { return o.types }

// Output dispatches on the library kind.
func (o *Orchestrator) Output(ctx context.Context, lib model.Library, st ScriptType) (string, error) {
	switch l := lib.(type) {
	case *model.UiFramework:
		return o.FrameworkOutput(ctx, l, st)
	case *model.VendorLibrary:
		return o.VendorOutput(ctx, l, st)
	case *model.Theme:
		return o.ThemeOutput(ctx, l, st)
	default:
		return "", fmt.Errorf("unsupported library %T", lib)
	}
}

// FrameworkOutput aggregates, in order: the vendor libraries fw lists (each
// after its dependencies, once), the framework's own assets, then for every
// component type with a view matching fw, that view's output immediately
// followed by the output of each of its variations.
func (o *Orchestrator) FrameworkOutput(ctx context.Context, fw *model.UiFramework, st ScriptType) (string, error) {
	var b strings.Builder

	for _, lib := range o.catalog.FrameworkLibraries(ctx, fw) {
		out, err := o.assets.Own(ctx, lib.Path, lib.ExternalizedFiles, st)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}

	own, err := o.assets.Own(ctx, fw.Path, fw.ExternalizedFiles, st)
	if err != nil {
		return "", err
	}
	b.WriteString(own)

	seen := make(map[string]bool)
	for _, root := range o.roots {
		for _, p := range o.types.Paths(root) {
			p = o.canonical(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			if err := o.writeComponent(ctx, &b, p, fw, st); err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

// canonical maps a base component type that is overridden to its override
// counterpart, so both layers count as one type.
func (o *Orchestrator) canonical(p string) string {
	types := o.views.Types()
	overlay := types.Overlay()
	if overlay.Layer(p) != resource.LayerBase {
		return p
	}
	mirror, ok := overlay.Mirror(p)
	if !ok {
		return p
	}
	if _, a := model.AdaptComponentType(types.Store(), mirror); a.OK() {
		return mirror
	}
	return p
}

func (o *Orchestrator) writeComponent(ctx context.Context, b *strings.Builder, p string, fw *model.UiFramework, st ScriptType) error {
	ct, a := model.AdaptComponentType(o.views.Types().Store(), p)
	if !a.OK() {
		return nil
	}
	if ct.Excludes(fw) && !ct.BypassFrameworkValidation {
		return nil
	}
	view, ok := o.views.Match(ctx, ct, fw)
	if !ok {
		return nil
	}

	out, err := o.assets.Own(ctx, view.Path, nil, st)
	if err != nil {
		return err
	}
	b.WriteString(out)
	for _, v := range o.variations.Resolve(view) {
		out, err := o.assets.Own(ctx, v.Path, nil, st)
		if err != nil {
			return err
		}
		b.WriteString(out)
	}
	return nil
}

// VendorOutput returns the output of lib preceded by its dependencies.
func (o *Orchestrator) VendorOutput(ctx context.Context, lib *model.VendorLibrary, st ScriptType) (string, error) {
	var b strings.Builder
	for _, l := range o.catalog.Closure(ctx, []string{lib.Path}) {
		out, err := o.assets.Own(ctx, l.Path, l.ExternalizedFiles, st)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// ThemeOutput returns the theme's framework bundle followed by the theme's
// own assets.
func (o *Orchestrator) ThemeOutput(ctx context.Context, theme *model.Theme, st ScriptType) (string, error) {
	bundle, err := o.FrameworkOutput(ctx, theme.Framework, st)
	if err != nil {
		return "", err
	}
	own, err := o.assets.Own(ctx, theme.SourcePath(), theme.ExternalizedFiles, st)
	if err != nil {
		return "", err
	}
	return bundle + own, nil
}
