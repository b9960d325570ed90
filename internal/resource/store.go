package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store is the boundary to the hierarchical resource tree.
type Store interface {
	// Resolve returns the node at p.
	Resolve(p string) (*Node, bool)
	// Children returns the direct children of p in insertion order.
	Children(p string) []*Node
	// Put stages a create-or-replace of node. Missing ancestors are
	// created as folders on commit.
	Put(node *Node) error
	// Delete stages removal of p and its subtree.
	Delete(p string) error
	// Commit applies staged writes atomically and notifies watchers.
	Commit(ctx context.Context) error
	// Refresh re-synchronizes the store with its backing source.
	Refresh(ctx context.Context) error
	// Watch returns a channel that receives committed change events.
	Watch() <-chan Event
	// UnWatch removes and closes a channel returned by Watch.
	UnWatch(ch <-chan Event)
}

// EventType represents the type of a committed change
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a committed change to a node.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

type entry struct {
	node     *Node
	children []string
}

type change struct {
	put   *Node
	path  string
	order []string
}

// MemoryStore is an in-process Store. It is safe for concurrent use;
// readers never observe a half-applied commit.
type MemoryStore struct {
	mutex    sync.RWMutex
	entries  map[string]*entry
	watchers []chan Event

	pendingMu sync.Mutex
	pending   []change
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store containing only the root folder.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]*entry{
			"/": {node: NewNode("/", TypeFolder)},
		},
	}
}

// Resolve returns the node at p.
func (s *MemoryStore) Resolve(p string) (*Node, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[Clean(p)]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Children returns the direct children of p in insertion order.
func (s *MemoryStore) Children(p string) []*Node {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p = Clean(p)
	e, ok := s.entries[p]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(e.children))
	for _, name := range e.children {
		if child, ok := s.entries[Join(p, name)]; ok {
			out = append(out, child.node)
		}
	}
	return out
}

// Put stages a create-or-replace of node.
func (s *MemoryStore) Put(node *Node) error {
	if node == nil {
		return fmt.Errorf("put: nil node")
	}
	if strings.TrimSpace(node.Path) == "" {
		return fmt.Errorf("put: node without path")
	}
	c := node.Clone()
	c.Path = Clean(c.Path)
	if c.Path == "/" {
		return fmt.Errorf("put: cannot replace the root node")
	}
	if c.Type == "" {
		c.Type = TypeFolder
	}

	s.pendingMu.Lock()
	s.pending = append(s.pending, change{put: c})
	s.pendingMu.Unlock()
	return nil
}

// Delete stages removal of p and its subtree.
func (s *MemoryStore) Delete(p string) error {
	p = Clean(p)
	if p == "/" {
		return fmt.Errorf("delete: cannot remove the root node")
	}

	s.pendingMu.Lock()
	s.pending = append(s.pending, change{path: p})
	s.pendingMu.Unlock()
	return nil
}

// Reorder stages a new child order for p. Listed names come first in the
// given order; unlisted children follow in their current order. Names that
// are not children of p are ignored.
func (s *MemoryStore) Reorder(p string, names []string) error {
	if names == nil {
		names = []string{}
	}
	s.pendingMu.Lock()
	s.pending = append(s.pending, change{path: Clean(p), order: append([]string(nil), names...)})
	s.pendingMu.Unlock()
	return nil
}

// Discard drops all staged writes.
func (s *MemoryStore) Discard() {
	s.pendingMu.Lock()
	s.pending = nil
	s.pendingMu.Unlock()
}

// Commit applies staged writes atomically and notifies watchers.
func (s *MemoryStore) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.pendingMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	now := time.Now()
	events := make([]Event, 0, len(pending))

	s.mutex.Lock()
	for _, c := range pending {
		if c.put != nil {
			events = append(events, s.apply(c.put, now)...)
			continue
		}
		if c.order != nil {
			events = append(events, s.reorder(c.path, c.order, now)...)
			continue
		}
		events = append(events, s.remove(c.path, now)...)
	}
	watchers := append([]chan Event(nil), s.watchers...)
	s.mutex.Unlock()

	for _, event := range events {
		for _, watcher := range watchers {
			select {
			case watcher <- event:
			default:
				// Skip if channel is full
			}
		}
	}
	return nil
}

// apply must be called with the write lock held.
func (s *MemoryStore) apply(node *Node, now time.Time) []Event {
	var events []Event
	events = append(events, s.ensureParents(node.Path, now)...)

	if existing, ok := s.entries[node.Path]; ok {
		if existing.node.Equal(node) {
			return events
		}
		existing.node = node
		return append(events, Event{Type: EventTypeUpdated, Path: node.Path, Timestamp: now})
	}

	s.entries[node.Path] = &entry{node: node}
	parent := s.entries[Parent(node.Path)]
	parent.children = append(parent.children, node.Name())
	return append(events, Event{Type: EventTypeAdded, Path: node.Path, Timestamp: now})
}

func (s *MemoryStore) ensureParents(p string, now time.Time) []Event {
	parent := Parent(p)
	if _, ok := s.entries[parent]; ok {
		return nil
	}
	events := s.ensureParents(parent, now)
	folder := NewNode(parent, TypeFolder)
	s.entries[parent] = &entry{node: folder}
	grand := s.entries[Parent(parent)]
	grand.children = append(grand.children, folder.Name())
	return append(events, Event{Type: EventTypeAdded, Path: parent, Timestamp: now})
}

// reorder must be called with the write lock held.
func (s *MemoryStore) reorder(p string, names []string, now time.Time) []Event {
	e, ok := s.entries[p]
	if !ok {
		return nil
	}

	present := make(map[string]bool, len(e.children))
	for _, name := range e.children {
		present[name] = true
	}
	ordered := make([]string, 0, len(e.children))
	placed := make(map[string]bool, len(names))
	for _, name := range names {
		if present[name] && !placed[name] {
			placed[name] = true
			ordered = append(ordered, name)
		}
	}
	for _, name := range e.children {
		if !placed[name] {
			ordered = append(ordered, name)
		}
	}

	changed := false
	for i := range ordered {
		if ordered[i] != e.children[i] {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	e.children = ordered
	return []Event{{Type: EventTypeUpdated, Path: p, Timestamp: now}}
}

// remove must be called with the write lock held.
func (s *MemoryStore) remove(p string, now time.Time) []Event {
	e, ok := s.entries[p]
	if !ok {
		return nil
	}

	var events []Event
	children := append([]string(nil), e.children...)
	for _, name := range children {
		events = append(events, s.remove(Join(p, name), now)...)
	}
	delete(s.entries, p)

	if parent, ok := s.entries[Parent(p)]; ok {
		name := e.node.Name()
		for i, child := range parent.children {
			if child == name {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	return append(events, Event{Type: EventTypeRemoved, Path: p, Timestamp: now})
}

// Refresh is a no-op for the in-memory store.
func (s *MemoryStore) Refresh(ctx context.Context) error {
	return ctx.Err()
}

// Watch returns a channel that receives committed change events.
func (s *MemoryStore) Watch() <-chan Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan Event, 256)
	s.watchers = append(s.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (s *MemoryStore) UnWatch(ch <-chan Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, watcher := range s.watchers {
		if watcher == ch {
			close(watcher)
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			break
		}
	}
}

// Len returns the number of nodes, including the root.
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Load stages and commits nodes in order.
func (s *MemoryStore) Load(ctx context.Context, nodes []*Node) error {
	for _, n := range nodes {
		if err := s.Put(n); err != nil {
			s.Discard()
			return err
		}
	}
	return s.Commit(ctx)
}

// Walk visits root and its descendants depth-first in child order. Returning
// false from fn skips the node's subtree.
func Walk(store Store, root string, fn func(n *Node) bool) {
	n, ok := store.Resolve(root)
	if !ok {
		return
	}
	walk(store, n, fn)
}

func walk(store Store, n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range store.Children(n.Path) {
		walk(store, child, fn)
	}
}
