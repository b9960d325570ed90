package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/thematic/internal/resource"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	testCases := []struct {
		path   string
		accept bool
	}{
		{"content/apps/widget/.content.yaml", true},
		{"content/apps/widget/body.html", true},
		{"content/.git/HEAD", false},
		{".git/objects/ab", false},
		{"content/apps/widget/body.html~", false},
		{"content/apps/.body.html.swp", false},
		{"content/apps/.#body.html", false},
		{"content/apps/4913", false},
		{"content/legit/file.css", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.accept, NoGitFilter(tc.path) && NoEditorFilter(tc.path))
		})
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := newDebouncer(time.Hour)
	d.pending = []ChangeEvent{
		{Type: EventTypeCreated, Path: "/b"},
		{Type: EventTypeCreated, Path: "/a"},
		{Type: EventTypeModified, Path: "/b"},
	}
	d.flush()

	select {
	case events := <-d.output:
		require.Len(t, events, 2)
		assert.Equal(t, "/a", events[0].Path)
		assert.Equal(t, "/b", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type, "last event per path wins")
	default:
		t.Fatal("flush produced no batch")
	}
	assert.Empty(t, d.pending)

	d.flush()
	assert.Empty(t, d.output, "empty flush sends nothing")
}

func TestFileWatcherDispatch(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	var got [][]ChangeEvent
	fw.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		got = append(got, events)
		return nil
	})
	fw.AddHandler(func(context.Context, []ChangeEvent) error { return assert.AnError })

	fw.dispatch(context.Background(), []ChangeEvent{{Path: "x"}})
	require.Len(t, got, 1, "a failing handler does not stop the others")
	assert.Equal(t, "x", got[0][0].Path)

	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop(), "stop is idempotent")
}

func TestAddRecursiveRejectsFiles(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, fw.AddRecursive(file))
	assert.Error(t, fw.AddRecursive(filepath.Join(t.TempDir(), "missing")))
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestContentWatcherHandle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "apps/widget/.content.yaml", "_type: component\n")

	store, err := resource.NewFileStore(ctx, dir, "/")
	require.NoError(t, err)
	cw, err := NewContentWatcher(store, 0, nil)
	require.NoError(t, err)
	defer cw.Stop()

	writeFile(t, dir, "apps/widget/bootstrap/body.html", "<div></div>")

	require.NoError(t, cw.handle(ctx, []ChangeEvent{{Path: filepath.Join(t.TempDir(), "elsewhere")}}))
	assert.Equal(t, int64(0), cw.Refreshes(), "events outside the directory are ignored")

	require.NoError(t, cw.handle(ctx, []ChangeEvent{{Path: filepath.Join(dir, "apps/widget/bootstrap/body.html")}}))
	assert.Equal(t, int64(1), cw.Refreshes())
	n, ok := store.Resolve("/apps/widget/bootstrap/body.html")
	require.True(t, ok)
	assert.Equal(t, "<div></div>", string(n.Content))
}

func TestContentWatcherRefreshesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "apps/widget/.content.yaml", "_type: component\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := resource.NewFileStore(ctx, dir, "/")
	require.NoError(t, err)

	events := store.Watch()
	defer store.UnWatch(events)

	cw, err := NewContentWatcher(store, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer cw.Stop()
	require.NoError(t, cw.Start(ctx))

	var mu sync.Mutex
	var seen []string
	go func() {
		for e := range events {
			mu.Lock()
			seen = append(seen, e.Path)
			mu.Unlock()
		}
	}()

	writeFile(t, dir, "apps/widget/widget.css", ".w{}")

	assert.Eventually(t, func() bool {
		_, ok := store.Resolve("/apps/widget/widget.css")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range seen {
			if p == "/apps/widget/widget.css" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}
