package model

import (
	"path"

	"github.com/conneroisu/thematic/internal/resource"
)

// ComponentUiFrameworkView is the render script set and variation set of one
// component type for one ui framework. A view with a "versions" child is a
// managed view whose version children are views in their own right.
type ComponentUiFrameworkView struct {
	Node *resource.Node

	Path    string
	Name    string
	Title   string
	Managed bool
	// Version is set on the version children of a managed view.
	Version string
}

// NewView projects a node already adapted to TagComponentView.
func NewView(store resource.Store, n *resource.Node) *ComponentUiFrameworkView {
	v := &ComponentUiFrameworkView{
		Node:  n,
		Path:  n.Path,
		Name:  n.Name(),
		Title: titleOf(n),
	}
	if _, ok := store.Resolve(resource.Join(n.Path, VersionsFolder)); ok {
		v.Managed = true
	}
	parent := resource.Parent(n.Path)
	if resource.Parent(parent) != parent && path.Base(parent) == VersionsFolder {
		if owner, ok := store.Resolve(resource.Parent(parent)); ok && owner.Type == TagComponentView {
			v.Version = v.Name
		}
	}
	return v
}

// AdaptView adapts p to a component view.
func AdaptView(store resource.Store, p string) (*ComponentUiFrameworkView, resource.Adaptation) {
	a := resource.Adapt(store, p, TagComponentView)
	if !a.OK() {
		return nil, a
	}
	return NewView(store, a.Node), a
}

// IsCommon reports whether this is the framework-independent fallback view.
func (v *ComponentUiFrameworkView) IsCommon() bool {
	return v.Version == "" && v.Name == CommonView
}

// OwnerPath returns the path of the component type owning the view.
func (v *ComponentUiFrameworkView) OwnerPath() string {
	if v.Version != "" {
		return resource.Parent(resource.Parent(resource.Parent(v.Path)))
	}
	return resource.Parent(v.Path)
}

// VersionPath returns the path of the given version child.
func (v *ComponentUiFrameworkView) VersionPath(version string) string {
	return resource.Join(v.Path, VersionsFolder, version)
}

// VariationsPath returns the path of the variations container.
func (v *ComponentUiFrameworkView) VariationsPath() string {
	return resource.Join(v.Path, VariationsFolder)
}

// ComponentVariation is a named style or markup modifier of a view.
type ComponentVariation struct {
	Node *resource.Node

	Path    string
	Name    string
	Title   string
	Inline  bool
	Default bool
	Class   string
}

// NewVariation projects a node already adapted to TagVariation.
func NewVariation(n *resource.Node) *ComponentVariation {
	class := n.String(PropClass)
	if class == "" {
		class = n.Name()
	}
	return &ComponentVariation{
		Node:    n,
		Path:    n.Path,
		Name:    n.Name(),
		Title:   titleOf(n),
		Inline:  n.Bool(PropInline),
		Default: n.Bool(PropDefault),
		Class:   class,
	}
}

// Wrapper reports whether the variation applies to the outer wrapper.
func (v *ComponentVariation) Wrapper() bool {
	return !v.Inline
}
