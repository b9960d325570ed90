package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Reserved keys in content bundles and node files.
const (
	metaType    = "_type"
	metaContent = "_content"
	metaOrder   = "_order"
)

// Node files that describe a directory when loading from disk.
var nodeFiles = []string{".content.yaml", ".content.yml", ".content.jsonc", ".content.json"}

// LoadYAML parses a content bundle into nodes, parents before children.
//
// A bundle is a YAML mapping. Mapping values are child nodes, every other
// value is a property of the enclosing node. Keys written as absolute paths
// ("/apps/widget") are placed at that path; other keys nest under their
// parent. "_type" sets the type tag and "_content" the file content:
//
//	/apps/widget:
//	  _type: component
//	  title: Widget
//	  bootstrap:
//	    _type: component-view
//	    body.html: {_content: "<div></div>"}
//
// Mapping order is preserved, so children load in the order they are written.
func LoadYAML(data []byte, mount string) ([]*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing content bundle: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("content bundle must be a mapping, got %s", kindName(root.Kind))
	}

	var nodes []*Node
	if err := loadMapping(root, Clean(mount), &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func loadMapping(m *yaml.Node, parent string, out *[]*Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i].Value, m.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: %q under %s must be a mapping", m.Content[i].Line, key, parent)
		}
		p := Join(parent, key)
		if IsAbs(key) {
			p = Clean(key)
		}
		if err := loadNode(value, p, out); err != nil {
			return err
		}
	}
	return nil
}

func loadNode(m *yaml.Node, p string, out *[]*Node) error {
	n := NewNode(p, "")
	*out = append(*out, n)

	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i].Value, m.Content[i+1]
		switch {
		case key == metaType:
			n.Type = value.Value
		case key == metaContent:
			n.Content = []byte(value.Value)
		case value.Kind == yaml.MappingNode:
			if err := loadNode(value, Join(p, key), out); err != nil {
				return err
			}
		default:
			var v interface{}
			if err := value.Decode(&v); err != nil {
				return fmt.Errorf("line %d: decoding %s.%s: %w", value.Line, p, key, err)
			}
			n.Properties[key] = v
		}
	}

	if n.Type == "" {
		if n.Content != nil {
			n.Type = TypeFile
		} else {
			n.Type = TypeFolder
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// LoadDir reads a directory tree into nodes mounted at mount.
//
// Every directory becomes a node; an optional node file (.content.yaml or
// .content.jsonc) supplies its "_type", "_order" and properties. Regular
// files become file nodes. Children listed in "_order" come first, the rest
// follow in lexical order. Hidden entries are skipped.
func LoadDir(dir, mount string) ([]*Node, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("loading content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading content dir: %s is not a directory", dir)
	}

	var nodes []*Node
	mount = Clean(mount)
	if err := loadDir(dir, mount, mount != "/", &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func loadDir(dir, p string, emit bool, out *[]*Node) error {
	props, err := readNodeFile(dir)
	if err != nil {
		return err
	}

	n := NewNode(p, TypeFolder)
	var order []string
	for k, v := range props {
		switch k {
		case metaType:
			if s, ok := v.(string); ok && s != "" {
				n.Type = s
			}
		case metaOrder:
			order = stringList(v)
		default:
			n.Properties[k] = v
		}
	}
	if emit {
		*out = append(*out, n)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	for _, name := range orderNames(names, order) {
		e := byName[name]
		full := filepath.Join(dir, name)
		if e.IsDir() {
			if err := loadDir(full, Join(p, name), true, out); err != nil {
				return err
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		content, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("reading %s: %w", full, err)
		}
		*out = append(*out, NewFile(Join(p, name), content))
	}
	return nil
}

func orderNames(names, order []string) []string {
	if len(order) == 0 {
		return names
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	placed := make(map[string]bool, len(order))
	for _, n := range order {
		if present[n] && !placed[n] {
			placed[n] = true
			out = append(out, n)
		}
	}
	for _, n := range names {
		if !placed[n] {
			out = append(out, n)
		}
	}
	return out
}

func readNodeFile(dir string) (map[string]interface{}, error) {
	for _, name := range nodeFiles {
		full := filepath.Join(dir, name)
		data, err := os.ReadFile(full)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", full, err)
		}

		props := make(map[string]interface{})
		switch filepath.Ext(name) {
		case ".jsonc", ".json":
			if err := json.Unmarshal(jsonc.ToJSON(data), &props); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", full, err)
			}
		default:
			if err := yaml.Unmarshal(data, &props); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", full, err)
			}
		}
		return props, nil
	}
	return nil, nil
}
