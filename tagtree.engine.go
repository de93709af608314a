package tagtree

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/itsatony/go-tagtree/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point: it owns the tag registry, the loaders and
// the cache of parsed templates. An Engine is safe for concurrent use once
// constructed; register libraries before rendering.
type Engine struct {
	registry *internal.Registry
	loaders  []Loader
	cache    map[string]cachedTemplate
	cacheMu  sync.RWMutex
	config   *engineConfig
	logger   *zap.Logger
}

// cachedTemplate is a parsed template and when it was loaded
type cachedTemplate struct {
	tmpl     *Template
	loadedAt time.Time
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := internal.NewRegistry(logger)
	internal.RegisterBuiltins(registry)

	e := &Engine{
		registry: registry,
		loaders:  config.loaders,
		cache:    make(map[string]cachedTemplate),
		config:   config,
		logger:   logger,
	}
	for _, lib := range config.libraries {
		if err := e.RegisterLibrary(lib); err != nil {
			return nil, err
		}
	}
	for _, p := range config.providers {
		if err := e.RegisterLibraryProvider(p); err != nil {
			return nil, err
		}
	}
	if len(config.scriptDirs) > 0 {
		if err := registry.RegisterProvider(internal.NewScriptProvider(config.scriptDirs, logger)); err != nil {
			return nil, NewRegistryError("", err)
		}
	}

	logger.Debug(LogMsgEngineCreated, zap.Int(LogFieldCount, len(e.loaders)))
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// RegisterLibrary makes lib loadable with {% load %}. The first library
// registered under a name wins; later ones return an error.
func (e *Engine) RegisterLibrary(lib *Library) error {
	if lib == nil {
		return NewRegistryError("", errors.New(internal.ErrMsgNilLibrary))
	}
	if err := e.registry.RegisterLibrary(lib.toInternal()); err != nil {
		return NewRegistryError(lib.Name, err)
	}
	return nil
}

// RegisterLibraryProvider adds a provider consulted for unregistered library names
func (e *Engine) RegisterLibraryProvider(p LibraryProvider) error {
	if p == nil {
		return NewRegistryError("", errors.New(internal.ErrMsgNilProvider))
	}
	if err := e.registry.RegisterProvider(&providerAdapter{provider: p}); err != nil {
		return NewRegistryError("", err)
	}
	return nil
}

// Parse parses an anonymous template
func (e *Engine) Parse(source string) (*Template, error) {
	return e.ParseNamed("", source)
}

// ParseNamed parses a template under name. The name is used in errors and to
// detect circular inheritance.
func (e *Engine) ParseNamed(name, source string) (*Template, error) {
	tmpl, err := internal.ParseTemplate(name, source, e.registry, e.logger)
	if err != nil {
		return nil, NewParseError(name, err)
	}
	return &Template{name: name, source: source, tmpl: tmpl, engine: e}, nil
}

// Compile always returns a template. A parse failure is kept in Err and
// returned by every Render call.
func (e *Engine) Compile(name, source string) *Template {
	tmpl, err := e.ParseNamed(name, source)
	if err != nil {
		return &Template{name: name, source: source, engine: e, err: err}
	}
	return tmpl
}

// MustParse parses source and panics on error
func (e *Engine) MustParse(source string) *Template {
	tmpl, err := e.Parse(source)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// GetTemplate returns the named template from the cache or the loaders
func (e *Engine) GetTemplate(ctx context.Context, name string) (*Template, error) {
	if name == "" {
		return nil, NewEmptyTemplateNameError()
	}
	if tmpl, ok := e.cached(name); ok {
		e.logger.Debug(LogMsgTemplateCacheHit, zap.String(LogFieldTemplate, name))
		return tmpl, nil
	}

	for _, l := range e.loaders {
		source, err := l.Load(ctx, name)
		if errors.Is(err, ErrTemplateNotFound) {
			e.logger.Debug(LogMsgLoaderMiss,
				zap.String(LogFieldTemplate, name),
				zap.String(LogFieldLoader, l.Name()),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		tmpl, err := e.ParseNamed(name, source)
		if err != nil {
			return nil, err
		}
		e.store(name, tmpl)
		e.logger.Debug(LogMsgTemplateLoaded,
			zap.String(LogFieldTemplate, name),
			zap.String(LogFieldLoader, l.Name()),
		)
		return tmpl, nil
	}
	return nil, NewTemplateNotFoundError(name)
}

// Render parses and renders source in one step
func (e *Engine) Render(ctx context.Context, source string, data map[string]any) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// RenderNamed loads and renders the named template
func (e *Engine) RenderNamed(ctx context.Context, name string, data map[string]any) (string, error) {
	tmpl, err := e.GetTemplate(ctx, name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// InvalidateCache drops the named templates from the cache, or every
// template when no names are given.
func (e *Engine) InvalidateCache(names ...string) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(names) == 0 {
		e.cache = make(map[string]cachedTemplate)
	}
	for _, name := range names {
		delete(e.cache, name)
	}
	e.logger.Debug(LogMsgCacheInvalidated, zap.Int(LogFieldCount, len(names)))
}

func (e *Engine) cached(name string) (*Template, bool) {
	if e.config.cacheTTL < 0 {
		return nil, false
	}
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[name]
	if !ok {
		return nil, false
	}
	if e.config.cacheTTL > 0 && time.Since(entry.loadedAt) > e.config.cacheTTL {
		return nil, false
	}
	return entry.tmpl, true
}

func (e *Engine) store(name string, tmpl *Template) {
	if e.config.cacheTTL < 0 {
		return
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.cache[name] = cachedTemplate{tmpl: tmpl, loadedAt: time.Now()}
}

// environment adapts the engine to the lookups extends and include perform
type environment struct {
	engine *Engine
}

// LoadTemplate implements internal.Environment
func (env environment) LoadTemplate(ctx context.Context, name string) (*internal.Template, error) {
	tmpl, err := env.engine.GetTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	return tmpl.tmpl, nil
}

// TemplateFromValue implements internal.Environment
func (env environment) TemplateFromValue(v any) (*internal.Template, bool) {
	switch t := v.(type) {
	case *Template:
		if t == nil || t.tmpl == nil {
			return nil, false
		}
		return t.tmpl, true
	case *internal.Template:
		return t, t != nil
	}
	return nil, false
}

// MaxDepth implements internal.Environment
func (env environment) MaxDepth() int {
	return env.engine.config.maxDepth
}
