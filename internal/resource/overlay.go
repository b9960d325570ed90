package resource

import "strings"

// Layer identifies which root of an Overlay a path belongs to.
type Layer int

const (
	LayerNone Layer = iota
	LayerOverride
	LayerBase
)

// String returns the string representation of the Layer
func (l Layer) String() string {
	switch l {
	case LayerOverride:
		return "override"
	case LayerBase:
		return "base"
	default:
		return "none"
	}
}

// Overlay is a pair of parallel roots where entries under Override shadow
// entries at the mirrored path under Base. Shadowing is per entry: a child
// missing from the override tree falls through to the base tree even when
// its parent exists in both.
type Overlay struct {
	Override string
	Base     string
}

// NewOverlay creates an overlay over two roots.
func NewOverlay(override, base string) Overlay {
	return Overlay{Override: Clean(override), Base: Clean(base)}
}

// Layer reports which root p lies under. The override root is checked first
// so that nested roots resolve to the more specific layer.
func (o Overlay) Layer(p string) Layer {
	switch {
	case Within(o.Override, p):
		return LayerOverride
	case Within(o.Base, p):
		return LayerBase
	default:
		return LayerNone
	}
}

// Relative returns p relative to the root it lies under, without a leading
// slash ("" for the root itself).
func (o Overlay) Relative(p string) (string, Layer) {
	p = Clean(p)
	layer := o.Layer(p)
	var root string
	switch layer {
	case LayerOverride:
		root = o.Override
	case LayerBase:
		root = o.Base
	default:
		return strings.TrimPrefix(p, "/"), LayerNone
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/"), layer
}

// Mirror returns the path at the same relative position under the other root.
func (o Overlay) Mirror(p string) (string, bool) {
	rel, layer := o.Relative(p)
	switch layer {
	case LayerOverride:
		return Join(o.Base, rel), true
	case LayerBase:
		return Join(o.Override, rel), true
	default:
		return "", false
	}
}

// Candidates lists the paths a possibly-bare name may refer to, in
// precedence order: the name itself when absolute, then under the override
// root, then under the base root.
func (o Overlay) Candidates(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool, 3)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if IsAbs(name) {
		add(Clean(name))
	}
	rel := strings.TrimPrefix(name, "/")
	add(Join(o.Override, rel))
	add(Join(o.Base, rel))
	return out
}

// Resolve looks rel up under the override root, falling back to the base root.
func (o Overlay) Resolve(store Store, rel string) (*Node, bool) {
	rel = strings.TrimPrefix(rel, "/")
	if n, ok := store.Resolve(Join(o.Override, rel)); ok {
		return n, true
	}
	return store.Resolve(Join(o.Base, rel))
}

// Child looks up the named child of parent with override-wins semantics.
// For a parent under the base root the mirrored override child is tried
// first; for a parent under the override root its own child is tried first
// and the mirrored base child second. Parents outside both roots are looked
// up directly.
func (o Overlay) Child(store Store, parent, name string) (*Node, bool) {
	local := Join(parent, name)
	mirror, ok := o.Mirror(local)
	if !ok {
		return store.Resolve(local)
	}
	switch o.Layer(local) {
	case LayerBase:
		if n, found := store.Resolve(mirror); found {
			return n, true
		}
		return store.Resolve(local)
	default:
		if n, found := store.Resolve(local); found {
			return n, true
		}
		return store.Resolve(mirror)
	}
}

// Children merges the children of rel under both roots. Override children
// come first in their own order, followed by base children whose names the
// override tree does not shadow.
func (o Overlay) Children(store Store, rel string) []*Node {
	rel = strings.TrimPrefix(rel, "/")
	override := store.Children(Join(o.Override, rel))
	base := store.Children(Join(o.Base, rel))

	out := make([]*Node, 0, len(override)+len(base))
	shadowed := make(map[string]bool, len(override))
	for _, n := range override {
		shadowed[n.Name()] = true
		out = append(out, n)
	}
	for _, n := range base {
		if !shadowed[n.Name()] {
			out = append(out, n)
		}
	}
	return out
}

// MergedChildren is Children for an absolute path. Paths outside both roots
// are listed directly.
func (o Overlay) MergedChildren(store Store, p string) []*Node {
	rel, layer := o.Relative(p)
	if layer == LayerNone {
		return store.Children(p)
	}
	return o.Children(store, rel)
}
