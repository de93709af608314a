package tagtree

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	loaders    []Loader
	libraries  []*Library
	providers  []LibraryProvider
	scriptDirs []string
	maxDepth   int
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		maxDepth: DefaultMaxDepth,
		cacheTTL: DefaultCacheTTL,
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithLoader appends a template loader. Loaders are consulted in the order
// they were added; the first one that knows a name wins.
func WithLoader(l Loader) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.loaders = append(c.loaders, l)
		}
	}
}

// WithMaxDepth bounds inheritance chains and include nesting.
// Values below 1 keep the default.
// Default: 32
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithLibrary registers a tag library loadable with {% load name %}
func WithLibrary(lib *Library) Option {
	return func(c *engineConfig) {
		c.libraries = append(c.libraries, lib)
	}
}

// WithLibraryProvider adds a provider consulted for library names that are not registered
func WithLibraryProvider(p LibraryProvider) Option {
	return func(c *engineConfig) {
		c.providers = append(c.providers, p)
	}
}

// WithScriptDirs enables Starlark tag libraries: {% load name %} finds
// <dir>/name.star in the first directory that has it.
func WithScriptDirs(dirs ...string) Option {
	return func(c *engineConfig) {
		c.scriptDirs = append(c.scriptDirs, dirs...)
	}
}

// WithTemplateCache sets how long templates fetched through loaders stay
// parsed in memory. Zero caches forever; a negative TTL disables caching.
// Default: 0
func WithTemplateCache(ttl time.Duration) Option {
	return func(c *engineConfig) {
		c.cacheTTL = ttl
	}
}
