package compile

import (
	"sync"

	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// ComponentTypeCache memoizes the component type paths found under a root.
// Entries are recomputed only after InvalidateAll.
type ComponentTypeCache struct {
	store resource.Store

	mutex  sync.RWMutex
	byRoot map[string][]string
}

// NewComponentTypeCache creates an empty cache.
func NewComponentTypeCache(store resource.Store) *ComponentTypeCache {
	return &ComponentTypeCache{
		store:  store,
		byRoot: make(map[string][]string),
	}
}

// Paths returns the component types under root in store order. Component
// types are not searched for nested component types.
func (c *ComponentTypeCache) Paths(root string) []string {
	root = resource.Clean(root)

	c.mutex.RLock()
	paths, ok := c.byRoot[root]
	c.mutex.RUnlock()
	if ok {
		return paths
	}

	paths = []string{}
	resource.Walk(c.store, root, func(n *resource.Node) bool {
		if n.Type == model.TagComponent {
			paths = append(paths, n.Path)
			return false
		}
		return !n.IsFile()
	})

	c.mutex.Lock()
	c.byRoot[root] = paths
	c.mutex.Unlock()
	return paths
}

// InvalidateAll forgets every root.
func (c *ComponentTypeCache) InvalidateAll() {
	c.mutex.Lock()
	c.byRoot = make(map[string][]string)
	c.mutex.Unlock()
}

// Len returns the number of memoized roots.
func (c *ComponentTypeCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.byRoot)
}
