package model

import (
	"strings"

	"github.com/conneroisu/thematic/internal/resource"
)

// ComponentType is a named, inheritable definition of a renderable unit.
type ComponentType struct {
	Node *resource.Node

	Path                      string
	Name                      string
	Title                     string
	Description               string
	Group                     string
	SuperType                 string
	BypassFrameworkValidation bool
	AllowedComponentTypes     []string
	ExcludedComponentTypes    []string
	AllowedGroups             []string
	ExcludedGroups            []string
	ExcludedUiFrameworks      []string
}

// NewComponentType projects a node already adapted to TagComponent.
func NewComponentType(n *resource.Node) *ComponentType {
	return &ComponentType{
		Node:                      n,
		Path:                      n.Path,
		Name:                      n.Name(),
		Title:                     titleOf(n),
		Description:               n.String(PropDescription),
		Group:                     n.String(PropComponentGroup),
		SuperType:                 strings.TrimSpace(n.String(PropSuperType)),
		BypassFrameworkValidation: n.Bool(PropBypassFrameworkValidation),
		AllowedComponentTypes:     n.Strings(PropAllowedComponentTypes),
		ExcludedComponentTypes:    n.Strings(PropExcludedComponentTypes),
		AllowedGroups:             n.Strings(PropAllowedGroups),
		ExcludedGroups:            n.Strings(PropExcludedGroups),
		ExcludedUiFrameworks:      n.Strings(PropExcludedUiFrameworks),
	}
}

// AdaptComponentType adapts p to a component type.
func AdaptComponentType(store resource.Store, p string) (*ComponentType, resource.Adaptation) {
	a := resource.Adapt(store, p, TagComponent)
	if !a.OK() {
		return nil, a
	}
	return NewComponentType(a.Node), a
}

// HasSupertype reports whether a supertype reference is set.
func (c *ComponentType) HasSupertype() bool {
	return c.SuperType != ""
}

// SupertypesItself reports whether the supertype reference names the type's
// own path, either directly or relative to one of the overlay roots.
func (c *ComponentType) SupertypesItself(o resource.Overlay) bool {
	if !c.HasSupertype() {
		return false
	}
	if resource.IsAbs(c.SuperType) {
		return resource.Clean(c.SuperType) == c.Path
	}
	rel := strings.TrimPrefix(c.SuperType, "/")
	return resource.Join(o.Override, rel) == c.Path || resource.Join(o.Base, rel) == c.Path
}

// Excludes reports whether fw is listed in excludedUiFrameworks by path,
// code or title.
func (c *ComponentType) Excludes(fw *UiFramework) bool {
	if fw == nil {
		return false
	}
	for _, ref := range c.ExcludedUiFrameworks {
		if ref == fw.Path || ref == fw.Code || ref == fw.Title {
			return true
		}
		if fw.Parent != nil && ref == fw.Parent.Path {
			return true
		}
	}
	return false
}

// Allows reports whether child may be placed inside a container of this
// type. Exclusions win over inclusions; empty allow lists allow everything.
func (c *ComponentType) Allows(child *ComponentType) bool {
	if child == nil {
		return false
	}
	if matchesType(c.ExcludedComponentTypes, child) ||
		(child.Group != "" && contains(c.ExcludedGroups, child.Group)) {
		return false
	}
	if len(c.AllowedComponentTypes) == 0 && len(c.AllowedGroups) == 0 {
		return true
	}
	return matchesType(c.AllowedComponentTypes, child) ||
		(child.Group != "" && contains(c.AllowedGroups, child.Group))
}

func matchesType(refs []string, ct *ComponentType) bool {
	for _, ref := range refs {
		if ref == ct.Path || ref == ct.Name {
			return true
		}
		if !resource.IsAbs(ref) && strings.HasSuffix(ct.Path, "/"+strings.TrimPrefix(ref, "/")) {
			return true
		}
	}
	return false
}
