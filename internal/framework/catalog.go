// Package framework lists ui frameworks, their versions, themes and vendor
// libraries from the framework and vendor roots of the store.
package framework

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// Catalog reads frameworks and vendor libraries.
type Catalog struct {
	store      resource.Store
	frameworks resource.Overlay
	vendors    resource.Overlay
	maxDepth   int
	logger     logging.Logger
}

// NewCatalog creates a catalog over the framework roots and the vendor
// library roots ("etc" as override, "libs" as base).
func NewCatalog(store resource.Store, frameworks, vendors resource.Overlay, maxDepth int, logger logging.Logger) *Catalog {
	if maxDepth <= 0 {
		maxDepth = 32
	}
	return &Catalog{
		store:      store,
		frameworks: frameworks,
		vendors:    vendors,
		maxDepth:   maxDepth,
		logger:     logging.OrNop(logger).WithComponent("framework_catalog"),
	}
}

// FrameworkRoots returns the framework overlay.
func (c *Catalog) FrameworkRoots() resource.Overlay { return c.frameworks }

// VendorRoots returns the vendor library overlay.
func (c *Catalog) VendorRoots() resource.Overlay { return c.vendors }

// Frameworks lists every buildable framework under both roots, override
// entries first. A managed framework contributes its versions, latest first,
// in place of the umbrella node.
func (c *Catalog) Frameworks(ctx context.Context) []*model.UiFramework {
	var out []*model.UiFramework
	c.walk(c.frameworks, "", 0, func(n *resource.Node) bool {
		switch n.Type {
		case model.TagUiFramework:
			out = append(out, model.NewUiFramework(n))
			return false
		case model.TagManagedUiFramework:
			versions := c.Versions(ctx, model.NewUiFramework(n))
			for i := len(versions) - 1; i >= 0; i-- {
				out = append(out, versions[i])
			}
			return false
		}
		return true
	})
	return out
}

// ManagedFrameworks lists the umbrella nodes of versioned frameworks.
func (c *Catalog) ManagedFrameworks(ctx context.Context) []*model.UiFramework {
	var out []*model.UiFramework
	c.walk(c.frameworks, "", 0, func(n *resource.Node) bool {
		switch n.Type {
		case model.TagManagedUiFramework:
			out = append(out, model.NewUiFramework(n))
			return false
		case model.TagUiFramework:
			return false
		}
		return true
	})
	return out
}

// Versions returns the versions of a managed framework in ascending
// semantic-version order. Names that are not valid versions sort last.
func (c *Catalog) Versions(ctx context.Context, managed *model.UiFramework) []*model.UiFramework {
	var out []*model.UiFramework
	for _, n := range c.frameworks.MergedChildren(c.store, managed.VersionsPath()) {
		if a := resource.AdaptNode(n, model.TagUiFramework); !a.OK() {
			c.logger.Debug(ctx, "Skipping non-framework version child", "path", n.Path, "type", n.Type)
			continue
		}
		out = append(out, model.NewFrameworkVersion(managed, n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return versionLess(out[i].Version, out[j].Version)
	})
	return out
}

// ByPath projects the framework at p. Version nodes are returned with their
// managing parent attached.
func (c *Catalog) ByPath(ctx context.Context, p string) (*model.UiFramework, error) {
	p = resource.Clean(p)
	a := resource.Adapt(c.store, p, model.TagUiFramework, model.TagManagedUiFramework)
	if !a.OK() {
		return nil, errors.ErrFrameworkNotFound(p)
	}
	if a.Node.Type == model.TagUiFramework {
		versions := resource.Parent(p)
		if strings.HasSuffix(versions, "/"+model.VersionsFolder) {
			parent := resource.Adapt(c.store, resource.Parent(versions), model.TagManagedUiFramework)
			if parent.OK() {
				return model.NewFrameworkVersion(model.NewUiFramework(parent.Node), a.Node), nil
			}
		}
	}
	return model.NewUiFramework(a.Node), nil
}

// ByCode returns the first framework in listing order whose code matches.
// For a managed framework this is its latest version.
func (c *Catalog) ByCode(ctx context.Context, code string) (*model.UiFramework, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.ErrFrameworkNotFound(code)
	}
	for _, fw := range c.Frameworks(ctx) {
		if fw.Code == code {
			return fw, nil
		}
	}
	return nil, errors.ErrFrameworkNotFound(code).WithContext("code", code)
}

// walk visits the merged children of rel under overlay depth-first. fn
// returns whether to descend into the node.
func (c *Catalog) walk(o resource.Overlay, rel string, depth int, fn func(*resource.Node) bool) {
	if depth > c.maxDepth {
		return
	}
	for _, n := range o.Children(c.store, rel) {
		if !fn(n) {
			continue
		}
		childRel, _ := o.Relative(n.Path)
		c.walk(o, childRel, depth+1, fn)
	}
}

func versionLess(a, b string) bool {
	va, vb := canonical(a), canonical(b)
	switch {
	case va != "" && vb != "":
		return semver.Compare(va, vb) < 0
	case va != "":
		return true
	case vb != "":
		return false
	default:
		return a < b
	}
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
