package framework

import (
	"context"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// VendorLibrary resolves a vendor library reference, an absolute path or a
// path relative to the vendor roots, with the etc root taking precedence.
func (c *Catalog) VendorLibrary(ctx context.Context, ref string) (*model.VendorLibrary, error) {
	a := resource.FirstAdaptation(c.store, c.vendors.Candidates(ref), model.TagVendorLibrary)
	if !a.OK() {
		if a.Status == resource.WrongType {
			c.logger.Warn(ctx, errors.ErrInvalidResourceType(a.Path, model.TagVendorLibrary),
				"Vendor library reference points at another type", "ref", ref)
		}
		return nil, errors.ErrVendorLibraryNotFound(ref)
	}
	return model.NewVendorLibrary(a.Node), nil
}

// VendorLibraries lists every vendor library under both roots.
func (c *Catalog) VendorLibraries(ctx context.Context) []*model.VendorLibrary {
	var out []*model.VendorLibrary
	c.walk(c.vendors, "", 0, func(n *resource.Node) bool {
		if n.Type == model.TagVendorLibrary {
			out = append(out, model.NewVendorLibrary(n))
			return false
		}
		return true
	})
	return out
}

// Closure resolves refs with their dependencies, each library preceded by
// the libraries it depends on and listed once. Dangling references are
// logged and skipped; dependency cycles are cut at the repeated library.
func (c *Catalog) Closure(ctx context.Context, refs []string) []*model.VendorLibrary {
	return c.closure(ctx, refs, nil)
}

// Ordered resolves refs keeping their listed order. Dependencies that are
// not themselves listed are placed before the first library needing them;
// a listed dependency stays at its own position.
func (c *Catalog) Ordered(ctx context.Context, refs []string) []*model.VendorLibrary {
	listed := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if lib, err := c.VendorLibrary(ctx, ref); err == nil {
			listed[lib.Path] = true
		}
	}
	return c.closure(ctx, refs, listed)
}

func (c *Catalog) closure(ctx context.Context, refs []string, listed map[string]bool) []*model.VendorLibrary {
	var out []*model.VendorLibrary
	done := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(ref string, depth int)
	visit = func(ref string, depth int) {
		if depth > c.maxDepth {
			c.logger.Warn(ctx, nil, "Vendor dependency chain exceeded maximum depth", "ref", ref, "max_depth", c.maxDepth)
			return
		}
		lib, err := c.VendorLibrary(ctx, ref)
		if err != nil {
			c.logger.Warn(ctx, err, "Skipping vendor library", "ref", ref)
			return
		}
		if done[lib.Path] {
			return
		}
		if depth > 0 && listed[lib.Path] {
			return
		}
		if visiting[lib.Path] {
			c.logger.Warn(ctx, nil, "Vendor dependency cycle detected", "library", lib.Path)
			return
		}
		visiting[lib.Path] = true
		for _, dep := range lib.Dependencies {
			visit(dep, depth+1)
		}
		visiting[lib.Path] = false
		done[lib.Path] = true
		out = append(out, lib)
	}

	for _, ref := range refs {
		visit(ref, 0)
	}
	return out
}

// FrameworkLibraries returns the vendor libraries fw includes in the order
// fw lists them, unlisted dependencies first.
func (c *Catalog) FrameworkLibraries(ctx context.Context, fw *model.UiFramework) []*model.VendorLibrary {
	return c.Ordered(ctx, fw.VendorLibraries)
}
