package watcher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/resource"
)

// DefaultDebounce is the delay used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// ContentWatcher refreshes a file store whenever its directory changes.
// Refreshes commit to the store, so store watchers see the resulting node
// events.
type ContentWatcher struct {
	files     *FileWatcher
	store     *resource.FileStore
	logger    logging.Logger
	refreshes int64
}

// NewContentWatcher creates a watcher for store's directory.
func NewContentWatcher(store *resource.FileStore, debounce time.Duration, logger logging.Logger) (*ContentWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger = logging.OrNop(logger)
	files, err := NewFileWatcher(debounce, logger)
	if err != nil {
		return nil, err
	}
	files.AddFilter(NoGitFilter)
	files.AddFilter(NoEditorFilter)

	cw := &ContentWatcher{
		files:  files,
		store:  store,
		logger: logger.WithComponent("content_watcher"),
	}
	files.AddHandler(cw.handle)
	return cw, nil
}

// Start watches the content directory until ctx is done.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	if err := cw.files.AddRecursive(cw.store.Dir()); err != nil {
		return err
	}
	cw.logger.Info(ctx, "Watching content", "dir", cw.store.Dir(), "mount", cw.store.Mount())
	return cw.files.Start(ctx)
}

// Stop releases the underlying watcher.
func (cw *ContentWatcher) Stop() error {
	return cw.files.Stop()
}

// Refreshes returns how many refreshes have run.
func (cw *ContentWatcher) Refreshes() int64 {
	return atomic.LoadInt64(&cw.refreshes)
}

func (cw *ContentWatcher) handle(ctx context.Context, events []ChangeEvent) error {
	paths := make([]string, 0, len(events))
	for _, e := range events {
		if p, ok := cw.store.PathFor(e.Path); ok {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	cw.logger.Debug(ctx, "Content changed", "paths", paths)
	if err := cw.store.Refresh(ctx); err != nil {
		return err
	}
	atomic.AddInt64(&cw.refreshes, 1)
	return nil
}
