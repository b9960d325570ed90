// Package services wires the resolvers, caches and builders into an Engine
// and runs its lifecycle: build on start, purge and rebuild on store
// changes.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/thematic/internal/build"
	"github.com/conneroisu/thematic/internal/compile"
	"github.com/conneroisu/thematic/internal/config"
	"github.com/conneroisu/thematic/internal/framework"
	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/pagecontext"
	"github.com/conneroisu/thematic/internal/render"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
	"github.com/conneroisu/thematic/internal/scripts"
	"github.com/conneroisu/thematic/internal/watcher"
)

// Engine owns every resolver and cache of one store.
type Engine struct {
	Config *config.Config
	Store  resource.Store

	Types      *resolver.ComponentTypeResolver
	Views      *resolver.ViewResolver
	Variations *resolver.VariationResolver
	Catalog    *framework.Catalog
	Pages      *pagecontext.Resolver
	Scripts    *scripts.PathResolver
	Compiler   *compile.Orchestrator
	Output     *build.OutputCache
	Purger     *build.Purger
	Decorator  *render.Decorator
	Renderer   *render.Renderer

	logger  logging.Logger
	watcher *watcher.ContentWatcher

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	events  <-chan resource.Event
	started bool
}

// Option customizes an Engine.
type Option func(*options)

type options struct {
	retriever scripts.Retriever
	compiler  compile.Compiler
}

// WithRetriever replaces the view-based script retriever.
func WithRetriever(r scripts.Retriever) Option {
	return func(o *options) { o.retriever = r }
}

// WithCompiler sets the compiler applied to every asset.
func WithCompiler(c compile.Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// NewEngine wires an engine over store.
func NewEngine(cfg *config.Config, store resource.Store, logger logging.Logger, opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.OrNop(logger)

	e := &Engine{Config: cfg, Store: store, logger: logger.WithComponent("engine")}

	e.Types = resolver.NewComponentTypeResolver(store,
		resource.NewOverlay(cfg.Roots.Override, cfg.Roots.Base),
		cfg.Resolution.MaxSupertypeDepth, logger)
	e.Views = resolver.NewViewResolver(e.Types, logger)
	e.Variations = resolver.NewVariationResolver(store, e.Types.Overlay(), logger)
	e.Catalog = framework.NewCatalog(store,
		resource.NewOverlay(cfg.Frameworks.OverrideRoot, cfg.Frameworks.BaseRoot),
		resource.NewOverlay(cfg.Vendors.EtcRoot, cfg.Vendors.LibsRoot),
		cfg.Resolution.MaxSupertypeDepth, logger)
	e.Pages = pagecontext.NewResolver(store, e.Catalog, logger)

	if o.retriever == nil {
		o.retriever = scripts.NewViewRetriever(e.Views, logger)
	}
	scriptCache := scripts.NewMapCache()
	e.Scripts = scripts.NewPathResolver(e.Types, e.Pages, o.retriever, scriptCache, logger)

	typeCache := compile.NewComponentTypeCache(store)
	e.Compiler = compile.NewOrchestrator(compile.OrchestratorConfig{
		Catalog:        e.Catalog,
		Views:          e.Views,
		Variations:     e.Variations,
		Types:          typeCache,
		Assets:         compile.NewAssets(store, o.compiler, logger),
		ComponentRoots: cfg.ComponentRoots(),
		Logger:         logger,
	})

	var memory *build.MemoryCache
	if cfg.Cache.MemoryBytes > 0 {
		memory = build.NewMemoryCache(cfg.Cache.MemoryBytes, cfg.Cache.MemoryTTL)
	}
	e.Output = build.NewOutputCache(store, e.Catalog, e.Compiler, build.Config{
		Root:       cfg.Cache.Root,
		Attempts:   cfg.Cache.BuildAttempts,
		RetryDelay: cfg.Cache.RetryDelay,
		Memory:     memory,
		Logger:     logger,
	})
	e.Purger = build.NewPurger(e.Output, cfg.Cache.MinPurgeInterval, logger, scriptCache, typeCache)
	e.Decorator = render.NewDecorator(e.Variations, logger)
	e.Renderer = render.NewRenderer(render.RendererConfig{
		Store:     store,
		Views:     e.Views,
		Pages:     e.Pages,
		Scripts:   e.Scripts,
		Decorator: e.Decorator,
		Logger:    logger,
	})
	return e
}

// Open creates the store described by cfg.Content and wires an engine over
// it. Without a content directory the store starts empty.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Engine, error) {
	if cfg.Content.Dir == "" {
		return NewEngine(cfg, resource.NewMemoryStore(), logger, opts...), nil
	}

	store, err := resource.NewFileStore(ctx, cfg.Content.Dir, cfg.Content.Mount)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	e := NewEngine(cfg, store, logger, opts...)
	if cfg.Content.Watch {
		w, err := watcher.NewContentWatcher(store, cfg.Content.Debounce, logger)
		if err != nil {
			return nil, err
		}
		e.watcher = w
	}
	return e, nil
}

// Start builds the compiled output and then purges on every store change
// outside the cache root until Stop is called or ctx is done. A failed
// initial build is logged and does not prevent Start from succeeding.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("engine already started")
	}

	if _, err := e.Output.BuildAll(ctx); err != nil {
		e.logger.Error(ctx, err, "Initial build failed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if e.watcher != nil {
		if err := e.watcher.Start(runCtx); err != nil {
			cancel()
			return fmt.Errorf("starting content watcher: %w", err)
		}
	}

	e.events = e.Store.Watch()
	e.cancel = cancel
	e.done = make(chan struct{})
	e.started = true
	go e.loop(runCtx, e.events, e.done)

	e.logger.Info(ctx, "Engine started", "cache_root", e.Output.Root())
	return nil
}

// Stop ends the purge loop and releases the watcher.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil
	}

	e.cancel()
	<-e.done
	e.Store.UnWatch(e.events)
	e.started = false

	if e.watcher != nil {
		return e.watcher.Stop()
	}
	return nil
}

// Rebuild purges every cache and rebuilds, ignoring the minimum interval.
func (e *Engine) Rebuild(ctx context.Context) error {
	return e.Purger.ForcePurge(ctx)
}

func (e *Engine) loop(ctx context.Context, events <-chan resource.Event, done chan<- struct{}) {
	defer close(done)

	var trailing *time.Timer
	var fire <-chan time.Time
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()

	purge := func() {
		ran, err := e.Purger.Purge(ctx)
		if err != nil {
			e.logger.Error(ctx, err, "Purge failed")
		}
		if ran || trailing != nil {
			return
		}
		// Collapsed trigger: purge once more when the interval has passed.
		trailing = time.NewTimer(e.Config.Cache.MinPurgeInterval)
		fire = trailing.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if e.cacheEvent(ev) {
				continue
			}
			e.logger.Debug(ctx, "Store changed", "path", ev.Path, "type", ev.Type.String())
			purge()
		case <-fire:
			trailing, fire = nil, nil
			purge()
		}
	}
}

// cacheEvent reports whether ev comes from writing compiled output: a change
// under the cache root or the creation of one of its ancestors.
func (e *Engine) cacheEvent(ev resource.Event) bool {
	root := e.Output.Root()
	if resource.Within(root, ev.Path) {
		return true
	}
	return ev.Type == resource.EventTypeAdded && resource.Within(ev.Path, root)
}
