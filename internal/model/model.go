// Package model provides typed projections of resource nodes: component
// types, their per-framework views and variations, ui frameworks, themes and
// vendor libraries.
//
// Projections are read-only values derived from the store. They are built by
// adapting a node to its type tag first; a projection never mutates the node
// it was built from.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/thematic/internal/resource"
)

// Type tags.
const (
	TagComponent          = "component"
	TagComponentView      = "component-view"
	TagVariation          = "variation"
	TagUiFramework        = "ui-framework"
	TagManagedUiFramework = "managed-ui-framework"
	TagTheme              = "theme"
	TagVendorLibrary      = "vendor-library"
)

// Reserved child names.
const (
	CommonView       = "common"
	VariationsFolder = "variations"
	VersionsFolder   = "versions"
	ThemesFolder     = "themes"
	DefaultTheme     = "default"
	DefaultCode      = "common"
)

// Property names.
const (
	PropTitle                     = "title"
	PropDescription               = "description"
	PropComponentGroup            = "componentGroup"
	PropSuperType                 = "superType"
	PropBypassFrameworkValidation = "bypassFrameworkValidation"
	PropAllowedComponentTypes     = "allowedComponentTypes"
	PropExcludedComponentTypes    = "excludedComponentTypes"
	PropAllowedGroups             = "allowedGroups"
	PropExcludedGroups            = "excludedGroups"
	PropExcludedUiFrameworks      = "excludedUiFrameworks"
	PropResourceType              = "resourceType"
	PropVariations                = "variations"
	PropInline                    = "inline"
	PropDefault                   = "default"
	PropClass                     = "class"
	PropCode                      = "code"
	PropVendorLibraries           = "vendorLibraries"
	PropExternalizedFiles         = "externalizedFiles"
	PropHeadScripts               = "headScripts"
	PropBodyScripts               = "bodyScripts"
	PropFontAwesomeIcon           = "fontAwesomeIcon"
	PropDependencies              = "dependencies"
	PropTheme                     = "theme"
)

// DefaultTitle derives a display title from a node name:
// "ui-framework_a" becomes "Ui Framework A".
func DefaultTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func titleOf(n *resource.Node) string {
	if t := strings.TrimSpace(n.String(PropTitle)); t != "" {
		return t
	}
	return DefaultTitle(n.Name())
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
