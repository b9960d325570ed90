// Package build persists the compiled output of every known library into
// the store and keeps it current across purges.
package build

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/thematic/internal/compile"
	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
)

// Defaults for an OutputCache.
const (
	DefaultRoot        = "/var/thematic/cache"
	DefaultAttempts    = 10
	DefaultRetryDelay  = 100 * time.Millisecond
	DefaultMemoryBytes = 8 << 20
	ManifestName       = "_manifest.msgpack"
)

// Properties written on cache file nodes.
const (
	PropLibrary     = "library"
	PropKind        = "kind"
	PropScriptType  = "scriptType"
	PropFingerprint = "fingerprint"
)

// Config configures an OutputCache.
type Config struct {
	Root       string
	Attempts   int
	RetryDelay time.Duration
	// Memory fronts store reads. Nil disables the front.
	Memory *MemoryCache
	Logger logging.Logger
}

// OutputCache writes one aggregate file per library and script type at
// {Root}{library path}.{ext}.
type OutputCache struct {
	store        resource.Store
	catalog      *framework.Catalog
	orchestrator *compile.Orchestrator
	root         string
	attempts     int
	retryDelay   time.Duration
	memory       *MemoryCache
	logger       logging.Logger

	buildMu sync.Mutex
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewOutputCache creates an output cache.
func NewOutputCache(store resource.Store, catalog *framework.Catalog, orchestrator *compile.Orchestrator, cfg Config) *OutputCache {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &OutputCache{
		store:        store,
		catalog:      catalog,
		orchestrator: orchestrator,
		root:         resource.Clean(cfg.Root),
		attempts:     cfg.Attempts,
		retryDelay:   cfg.RetryDelay,
		memory:       cfg.Memory,
		logger:       logging.OrNop(cfg.Logger).WithComponent("output_cache"),
		sleep:        sleepContext,
	}
}

// Root returns the cache root.
func (c *OutputCache) Root() string { return c.root }

// Memory returns the in-memory front, or nil.
func (c *OutputCache) Memory() *MemoryCache { return c.memory }

// CachePath returns the cache file path for a library and script type.
func (c *OutputCache) CachePath(libPath string, st compile.ScriptType) string {
	p := resource.Clean(libPath)
	if c.root == "/" {
		return p + "." + st.Extension()
	}
	return c.root + p + "." + st.Extension()
}

// ManifestPath returns the path of the build manifest node.
func (c *OutputCache) ManifestPath() string {
	return resource.Join(c.root, ManifestName)
}

// Cache computes and writes every script type of lib, then commits.
func (c *OutputCache) Cache(ctx context.Context, lib model.Library) error {
	entries, err := c.stage(ctx, lib)
	if err != nil {
		c.discard()
		return err
	}
	if err := c.store.Commit(ctx); err != nil {
		return errors.NewCacheBuildError("committing compiled output", err).WithPath(lib.LibraryPath())
	}
	c.remember(entries)
	return nil
}

type staged struct {
	entry   ManifestEntry
	content []byte
}

func (c *OutputCache) stage(ctx context.Context, lib model.Library) ([]staged, error) {
	out := make([]staged, 0, len(compile.ScriptTypes))
	for _, st := range compile.ScriptTypes {
		content, err := c.orchestrator.Output(ctx, lib, st)
		if err != nil {
			return out, errors.NewCacheBuildError(
				fmt.Sprintf("compiling %s output", st), err,
			).WithPath(lib.LibraryPath())
		}

		p := c.CachePath(lib.LibraryPath(), st)
		data := []byte(content)
		sum := Fingerprint(data)
		node := resource.NewFile(p, data).
			Set(PropLibrary, lib.LibraryPath()).
			Set(PropKind, string(lib.Kind())).
			Set(PropScriptType, st.String()).
			Set(PropFingerprint, sum)
		if err := c.store.Put(node); err != nil {
			return out, errors.NewCacheBuildError("staging compiled output", err).WithPath(p)
		}
		out = append(out, staged{
			entry: ManifestEntry{
				Library:     lib.LibraryPath(),
				Kind:        string(lib.Kind()),
				ScriptType:  st.String(),
				Path:        p,
				Fingerprint: sum,
				Size:        len(data),
			},
			content: data,
		})
	}
	return out, nil
}

func (c *OutputCache) remember(entries []staged) {
	if c.memory == nil {
		return
	}
	for _, s := range entries {
		c.memory.Set(s.entry.Path, s.content, s.entry.Fingerprint)
	}
}

// GetCachedOutput returns the cached output of a library for a script
// type. It never recomputes; a missing file is a cache retrieval error.
func (c *OutputCache) GetCachedOutput(ctx context.Context, libPath string, st compile.ScriptType) (string, error) {
	p := c.CachePath(libPath, st)
	if c.memory != nil {
		if value, _, ok := c.memory.Get(p); ok {
			return string(value), nil
		}
	}

	n, ok := c.store.Resolve(p)
	if !ok || !n.IsFile() {
		err := errors.ErrCacheRetrieval(p).WithContext("library", libPath)
		c.logger.Warn(ctx, err, "Compiled output not cached", "library", libPath, "script_type", st.String())
		return "", err
	}
	if c.memory != nil {
		c.memory.Set(p, n.Content, n.String(PropFingerprint))
	}
	return string(n.Content), nil
}

// BuildAll rebuilds the output of every framework, vendor library and
// theme. An empty framework listing is retried with a store refresh
// between attempts; when the attempts run out the build fails.
func (c *OutputCache) BuildAll(ctx context.Context) (*Manifest, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	op := logging.StartOperation(c.logger, "build_all")
	defer op.End(ctx)

	frameworks, attempts, err := c.awaitFrameworks(ctx)
	if err != nil {
		return nil, err
	}

	collector := errors.NewErrorCollector()
	manifest := &Manifest{BuiltAt: time.Now(), Attempts: attempts}

	libs := make([]model.Library, 0, len(frameworks))
	for _, fw := range frameworks {
		libs = append(libs, fw)
	}
	for _, v := range c.catalog.VendorLibraries(ctx) {
		libs = append(libs, v)
	}
	for _, t := range c.catalog.AllThemes(ctx) {
		libs = append(libs, t)
	}

	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			c.discard()
			return nil, err
		}
		entries, err := c.stage(ctx, lib)
		if err != nil {
			c.discard()
			collector.AddError(lib.LibraryPath(), "", err)
			c.logger.Error(ctx, err, "Library build failed", "library", lib.LibraryPath())
			continue
		}
		if err := c.store.Commit(ctx); err != nil {
			collector.AddError(lib.LibraryPath(), "", err)
			continue
		}
		for _, s := range entries {
			manifest.Entries = append(manifest.Entries, s.entry)
		}
		c.remember(entries)
	}

	for _, f := range collector.Failures() {
		manifest.Failures = append(manifest.Failures, f.Error())
	}
	if err := c.writeManifest(ctx, manifest); err != nil {
		collector.AddError(c.ManifestPath(), "", err)
	}

	err = collector.Err()
	c.logger.Info(ctx, "Compiled output rebuilt",
		"libraries", len(libs),
		"entries", len(manifest.Entries),
		"failures", len(manifest.Failures),
		"attempts", attempts)
	return manifest, err
}

func (c *OutputCache) awaitFrameworks(ctx context.Context) ([]*model.UiFramework, int, error) {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if frameworks := c.catalog.Frameworks(ctx); len(frameworks) > 0 {
			return frameworks, attempt, nil
		}
		if attempt == c.attempts {
			break
		}
		c.logger.Debug(ctx, "No UI frameworks found, retrying", "attempt", attempt)
		if err := c.store.Refresh(ctx); err != nil {
			c.logger.Warn(ctx, err, "Store refresh failed", "attempt", attempt)
		}
		if err := c.sleep(ctx, c.retryDelay); err != nil {
			return nil, attempt, err
		}
	}

	err := errors.NewCacheBuildError(
		fmt.Sprintf("no UI frameworks found after %d attempts", c.attempts), nil,
	).WithContext("attempts", c.attempts)
	c.logger.Error(ctx, err, "Compiled output cache not built")
	return nil, c.attempts, err
}

func (c *OutputCache) writeManifest(ctx context.Context, m *Manifest) error {
	packed, err := encodeManifest(m)
	if err != nil {
		return err
	}
	if err := c.store.Put(resource.NewFile(c.ManifestPath(), packed)); err != nil {
		return err
	}
	return c.store.Commit(ctx)
}

// Manifest returns the manifest written by the last BuildAll.
func (c *OutputCache) Manifest(_ context.Context) (*Manifest, error) {
	n, ok := c.store.Resolve(c.ManifestPath())
	if !ok || !n.IsFile() {
		return nil, errors.ErrCacheRetrieval(c.ManifestPath())
	}
	return decodeManifest(n.Content)
}

// Clear removes every cache file and empties the memory front.
func (c *OutputCache) Clear(ctx context.Context) error {
	if c.memory != nil {
		c.memory.Clear()
	}
	if _, ok := c.store.Resolve(c.root); !ok {
		return nil
	}
	if err := c.store.Delete(c.root); err != nil {
		return err
	}
	return c.store.Commit(ctx)
}

// discard drops staged writes on stores that support it.
func (c *OutputCache) discard() {
	if d, ok := c.store.(interface{ Discard() }); ok {
		d.Discard()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
