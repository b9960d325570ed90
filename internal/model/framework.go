package model

import (
	"strings"

	"github.com/conneroisu/thematic/internal/resource"
)

// LibraryKind identifies the kind of compiled front-end library.
type LibraryKind string

const (
	KindUiFramework   LibraryKind = "ui-framework"
	KindVendorLibrary LibraryKind = "vendor-library"
	KindTheme         LibraryKind = "theme"
)

// Library is anything whose compiled output is cached under its path.
type Library interface {
	LibraryPath() string
	Kind() LibraryKind
}

// UiFramework aggregates vendor libraries, themes and matching component
// views into one front-end bundle.
type UiFramework struct {
	Node *resource.Node

	Path              string
	Name              string
	Title             string
	Code              string
	Icon              string
	VendorLibraries   []string
	ExternalizedFiles []string
	HeadScripts       []string
	BodyScripts       []string

	// Managed marks the umbrella node of a versioned framework.
	Managed bool
	// Version and Parent are set on the versions of a managed framework.
	Version string
	Parent  *UiFramework
}

var _ Library = (*UiFramework)(nil)

// NewUiFramework projects a node adapted to TagUiFramework or
// TagManagedUiFramework.
func NewUiFramework(n *resource.Node) *UiFramework {
	code := strings.TrimSpace(n.String(PropCode))
	if code == "" {
		code = DefaultCode
	}
	f := &UiFramework{
		Node:    n,
		Path:    n.Path,
		Name:    n.Name(),
		Title:   titleOf(n),
		Code:    code,
		Icon:    n.String(PropFontAwesomeIcon),
		Managed: n.Type == TagManagedUiFramework,
	}
	f.readLists(n)
	return f
}

// NewFrameworkVersion projects a version child of a managed framework.
// Code, icon and title are inherited from parent unless the version sets them.
func NewFrameworkVersion(parent *UiFramework, n *resource.Node) *UiFramework {
	f := &UiFramework{
		Node:    n,
		Path:    n.Path,
		Name:    n.Name(),
		Title:   strings.TrimSpace(n.String(PropTitle)),
		Code:    strings.TrimSpace(n.String(PropCode)),
		Icon:    n.String(PropFontAwesomeIcon),
		Version: n.Name(),
		Parent:  parent,
	}
	if f.Title == "" {
		f.Title = parent.Title
	}
	if f.Code == "" {
		f.Code = parent.Code
	}
	if f.Icon == "" {
		f.Icon = parent.Icon
	}
	f.readLists(n)
	return f
}

func (f *UiFramework) readLists(n *resource.Node) {
	f.VendorLibraries = n.Strings(PropVendorLibraries)
	f.ExternalizedFiles = n.Strings(PropExternalizedFiles)
	f.HeadScripts = n.Strings(PropHeadScripts)
	f.BodyScripts = n.Strings(PropBodyScripts)
}

// LibraryPath returns the framework path.
func (f *UiFramework) LibraryPath() string { return f.Path }

// Kind returns KindUiFramework.
func (f *UiFramework) Kind() LibraryKind { return KindUiFramework }

// IsVersion reports whether f is a version of a managed framework.
func (f *UiFramework) IsVersion() bool {
	return f.Parent != nil
}

// VersionsPath returns the versions container of a managed framework.
func (f *UiFramework) VersionsPath() string {
	return resource.Join(f.Path, VersionsFolder)
}

// ThemesPath returns the themes container.
func (f *UiFramework) ThemesPath() string {
	return resource.Join(f.Path, ThemesFolder)
}

// String returns the identifier used in diagnostics.
func (f *UiFramework) String() string {
	if f.Version != "" {
		return f.Code + "@" + f.Version
	}
	return f.Code
}

// Theme is a framework-scoped skin. A virtual theme presents a theme of
// another version of the same managed framework as belonging to Framework;
// its assets are still read from Node.
type Theme struct {
	Node *resource.Node

	Path              string
	Name              string
	Title             string
	ExternalizedFiles []string
	HeadScripts       []string
	BodyScripts       []string

	Framework *UiFramework
	Virtual   bool
	// Origin is the framework the theme node belongs to.
	Origin *UiFramework
}

var _ Library = (*Theme)(nil)

// NewTheme projects a node adapted to TagTheme under fw.
func NewTheme(fw *UiFramework, n *resource.Node) *Theme {
	return &Theme{
		Node:              n,
		Path:              n.Path,
		Name:              n.Name(),
		Title:             titleOf(n),
		ExternalizedFiles: n.Strings(PropExternalizedFiles),
		HeadScripts:       n.Strings(PropHeadScripts),
		BodyScripts:       n.Strings(PropBodyScripts),
		Framework:         fw,
		Origin:            fw,
	}
}

// NewVirtualTheme presents t as a theme of fw.
func NewVirtualTheme(t *Theme, fw *UiFramework) *Theme {
	v := *t
	v.Path = resource.Join(fw.ThemesPath(), t.Name)
	v.Framework = fw
	v.Virtual = true
	v.Origin = t.Origin
	return &v
}

// LibraryPath returns the path the theme is presented at.
func (t *Theme) LibraryPath() string { return t.Path }

// Kind returns KindTheme.
func (t *Theme) Kind() LibraryKind { return KindTheme }

// SourcePath returns the path the theme's assets are read from.
func (t *Theme) SourcePath() string { return t.Node.Path }

// IsDefault reports whether this is the framework's default theme.
func (t *Theme) IsDefault() bool { return t.Name == DefaultTheme }

// VendorLibrary is a third-party front-end library included by frameworks.
type VendorLibrary struct {
	Node *resource.Node

	Path              string
	Name              string
	Title             string
	Icon              string
	Dependencies      []string
	ExternalizedFiles []string
	HeadScripts       []string
	BodyScripts       []string
}

var _ Library = (*VendorLibrary)(nil)

// NewVendorLibrary projects a node adapted to TagVendorLibrary.
func NewVendorLibrary(n *resource.Node) *VendorLibrary {
	return &VendorLibrary{
		Node:              n,
		Path:              n.Path,
		Name:              n.Name(),
		Title:             titleOf(n),
		Icon:              n.String(PropFontAwesomeIcon),
		Dependencies:      n.Strings(PropDependencies),
		ExternalizedFiles: n.Strings(PropExternalizedFiles),
		HeadScripts:       n.Strings(PropHeadScripts),
		BodyScripts:       n.Strings(PropBodyScripts),
	}
}

// LibraryPath returns the vendor library path.
func (v *VendorLibrary) LibraryPath() string { return v.Path }

// Kind returns KindVendorLibrary.
func (v *VendorLibrary) Kind() LibraryKind { return KindVendorLibrary }
