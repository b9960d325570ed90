// Package compile aggregates the compiled output of vendor libraries, ui
// frameworks, themes and component views in their fixed precedence order.
package compile

import (
	"fmt"
	"path"
	"strings"
)

// ScriptType is a kind of compiled output.
type ScriptType string

const (
	HTML ScriptType = "html"
	CSS  ScriptType = "css"
	JS   ScriptType = "js"
)

// ScriptTypes lists every script type in build order.
var ScriptTypes = []ScriptType{HTML, CSS, JS}

// ParseScriptType parses "html", "css" or "js", case-insensitively.
func ParseScriptType(s string) (ScriptType, error) {
	switch st := ScriptType(strings.ToLower(strings.TrimSpace(s))); st {
	case HTML, CSS, JS:
		return st, nil
	default:
		return "", fmt.Errorf("unknown script type %q (want html, css or js)", s)
	}
}

// Extension returns the file extension, without dot, of the script type.
func (s ScriptType) Extension() string {
	return string(s)
}

// Matches reports whether a file name carries the script type's extension.
func (s ScriptType) Matches(name string) bool {
	return strings.EqualFold(strings.TrimPrefix(path.Ext(name), "."), s.Extension())
}

// String returns the string representation of the ScriptType
func (s ScriptType) String() string {
	return string(s)
}
