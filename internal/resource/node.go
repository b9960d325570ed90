// Package resource provides the hierarchical, path-addressed node store the
// rendering layer reads from, together with the two-root overlay lookup and
// typed adaptation helpers built on top of it.
//
// Nodes are addressed by slash-separated absolute paths ("/apps/widget").
// Children keep the order in which they were inserted. Writes are staged and
// only become visible after Commit, which also notifies watchers.
package resource

import (
	"bytes"
	"fmt"
	"path"
	"reflect"
	"strconv"
	"strings"
)

// Well-known node type tags used by the store itself.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
)

// Node is a single entry of the resource tree.
//
// Nodes returned by a Store are shared and must be treated as read-only;
// use Clone before modifying one and Put the copy back.
type Node struct {
	Path       string
	Type       string
	Properties map[string]interface{}
	Content    []byte
}

// NewNode creates a node of the given type at p.
func NewNode(p, typeTag string) *Node {
	return &Node{
		Path:       Clean(p),
		Type:       typeTag,
		Properties: make(map[string]interface{}),
	}
}

// NewFile creates a file node holding content.
func NewFile(p string, content []byte) *Node {
	n := NewNode(p, TypeFile)
	n.Content = content
	return n
}

// Name returns the last path segment.
func (n *Node) Name() string {
	return path.Base(n.Path)
}

// IsFile reports whether the node carries file content.
func (n *Node) IsFile() bool {
	return n.Type == TypeFile
}

// Has reports whether the property key is set.
func (n *Node) Has(key string) bool {
	_, ok := n.Properties[key]
	return ok
}

// Set assigns a property and returns the node so calls can be chained.
func (n *Node) Set(key string, value interface{}) *Node {
	if n.Properties == nil {
		n.Properties = make(map[string]interface{})
	}
	n.Properties[key] = value
	return n
}

// String returns the property as a string, or "" when unset.
func (n *Node) String(key string) string {
	v, ok := n.Properties[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the property as a boolean. Strings "true"/"false" are parsed.
func (n *Node) Bool(key string) bool {
	switch v := n.Properties[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Strings returns the property as a string list. A single string becomes a
// one-element list; empty strings are dropped.
func (n *Node) Strings(key string) []string {
	return stringList(n.Properties[key])
}

func stringList(value interface{}) []string {
	var out []string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v != "" {
			out = append(out, v)
		}
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if item == nil {
				continue
			}
			if s := fmt.Sprint(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{
		Path:       n.Path,
		Type:       n.Type,
		Properties: make(map[string]interface{}, len(n.Properties)),
	}
	for k, v := range n.Properties {
		c.Properties[k] = cloneValue(v)
	}
	if n.Content != nil {
		c.Content = append([]byte(nil), n.Content...)
	}
	return c
}

// Equal reports whether two nodes carry the same type, properties and content.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Path != other.Path || n.Type != other.Type || !bytes.Equal(n.Content, other.Content) {
		return false
	}
	if len(n.Properties) != len(other.Properties) {
		return false
	}
	if len(n.Properties) == 0 {
		return true
	}
	return reflect.DeepEqual(n.Properties, other.Properties)
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Clean normalizes p into an absolute, slash-separated path.
func Clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Join joins path elements and cleans the result.
func Join(elem ...string) string {
	return Clean(path.Join(elem...))
}

// Parent returns the parent path of p. The parent of "/" is "/".
func Parent(p string) string {
	return path.Dir(Clean(p))
}

// IsAbs reports whether p is written as an absolute path.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, "/")
}

// Within reports whether p equals root or lies beneath it.
func Within(root, p string) bool {
	root, p = Clean(root), Clean(p)
	if root == "/" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
