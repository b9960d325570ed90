package resource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore is a MemoryStore populated from a directory tree. Refresh
// reloads the tree from disk and commits only the differences, so nodes
// written by other parties (for example compiled-output cache files) outside
// the loaded paths are kept.
type FileStore struct {
	*MemoryStore

	dir   string
	mount string

	refreshMu sync.Mutex
	managed   map[string]bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads dir into a new store mounted at mount.
func NewFileStore(ctx context.Context, dir, mount string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving content dir: %w", err)
	}
	s := &FileStore{
		MemoryStore: NewMemoryStore(),
		dir:         abs,
		mount:       Clean(mount),
		managed:     make(map[string]bool),
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the store is loaded from.
func (s *FileStore) Dir() string {
	return s.dir
}

// Mount returns the store path the directory is mounted at.
func (s *FileStore) Mount() string {
	return s.mount
}

// PathFor maps a file under Dir to its store path.
func (s *FileStore) PathFor(file string) (string, bool) {
	rel, err := filepath.Rel(s.dir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return s.mount, true
	}
	return Join(s.mount, filepath.ToSlash(rel)), true
}

// Refresh reloads the directory and commits changed, added and removed nodes.
// Children are reordered to match the reloaded order.
func (s *FileStore) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	nodes, err := LoadDir(s.dir, s.mount)
	if err != nil {
		return err
	}

	loaded := make(map[string]bool, len(nodes))
	order := make(map[string][]string)
	var parents []string
	for _, n := range nodes {
		loaded[n.Path] = true
		parent := Parent(n.Path)
		if _, ok := order[parent]; !ok {
			parents = append(parents, parent)
		}
		order[parent] = append(order[parent], n.Name())
		if existing, ok := s.MemoryStore.Resolve(n.Path); ok && existing.Equal(n) {
			continue
		}
		if err := s.MemoryStore.Put(n); err != nil {
			s.MemoryStore.Discard()
			return err
		}
	}
	for p := range s.managed {
		if !loaded[p] {
			if err := s.MemoryStore.Delete(p); err != nil {
				s.MemoryStore.Discard()
				return err
			}
		}
	}
	for _, parent := range parents {
		if err := s.MemoryStore.Reorder(parent, order[parent]); err != nil {
			s.MemoryStore.Discard()
			return err
		}
	}
	if err := s.MemoryStore.Commit(ctx); err != nil {
		return err
	}
	s.managed = loaded
	return nil
}
