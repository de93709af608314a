package internal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// TagFactory builds a node from the content of a {% %} tag. The factory may
// consume further tokens through p, for example to parse a body until an end tag.
type TagFactory interface {
	GetNode(content string, p *Parser) (Node, error)
}

// TagFactoryFunc adapts a function to TagFactory
type TagFactoryFunc func(content string, p *Parser) (Node, error)

// GetNode calls f
func (f TagFactoryFunc) GetNode(content string, p *Parser) (Node, error) {
	return f(content, p)
}

// Library is a named set of tags and filters made visible by {% load name %}
type Library struct {
	Name    string
	Tags    map[string]TagFactory
	Filters map[string]*Filter
}

// LibraryProvider supplies libraries that are not registered up front.
// found=false means the provider does not know the name.
type LibraryProvider interface {
	ProvideLibrary(name string) (lib *Library, found bool, err error)
}

// Registry holds the built-in tags and filters plus the loadable libraries.
// Registration uses first-come-wins semantics and is safe for concurrent use.
// Parses never mutate it; each parse copies the built-ins into its own scope.
type Registry struct {
	tags      map[string]TagFactory
	filters   map[string]*Filter
	libraries map[string]*Library
	providers []LibraryProvider
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRegistry creates a registry preloaded with the built-in filters
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		tags:      make(map[string]TagFactory),
		filters:   BuiltinFilters(),
		libraries: make(map[string]*Library),
		logger:    logger,
	}
}

// RegisterTag adds a built-in tag visible to every parse
func (r *Registry) RegisterTag(name string, factory TagFactory) error {
	if factory == nil {
		return NewRegistryError(ErrMsgNilFactory, name)
	}
	if name == StringValueEmpty {
		return NewRegistryError(ErrMsgEmptyTagName, StringValueEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[name]; exists {
		r.logger.Warn(LogMsgLibraryCollision, zap.String(LogFieldTag, name))
		return NewRegistryError(ErrMsgTagAlreadyExists, name)
	}
	r.tags[name] = factory
	return nil
}

// MustRegisterTag adds a built-in tag and panics if registration fails
func (r *Registry) MustRegisterTag(name string, factory TagFactory) {
	if err := r.RegisterTag(name, factory); err != nil {
		panic(err)
	}
}

// RegisterLibrary adds a library loadable by name
func (r *Registry) RegisterLibrary(lib *Library) error {
	if lib == nil {
		return NewRegistryError(ErrMsgNilLibrary, StringValueEmpty)
	}
	if lib.Name == StringValueEmpty {
		return NewRegistryError(ErrMsgEmptyLibraryName, StringValueEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.libraries[lib.Name]; exists {
		r.logger.Warn(LogMsgLibraryCollision, zap.String(LogFieldLibrary, lib.Name))
		return NewRegistryError(ErrMsgLibraryAlreadyExists, lib.Name)
	}
	r.libraries[lib.Name] = lib
	r.logger.Debug(LogMsgLibraryRegistered,
		zap.String(LogFieldLibrary, lib.Name),
		zap.Int(LogFieldTagCount, len(lib.Tags)),
	)
	return nil
}

// RegisterProvider appends a provider consulted after the registered libraries
func (r *Registry) RegisterProvider(p LibraryProvider) error {
	if p == nil {
		return NewRegistryError(ErrMsgNilProvider, StringValueEmpty)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
	r.logger.Debug(LogMsgProviderRegistered, zap.Int(LogFieldCount, len(r.providers)))
	return nil
}

// LoadLibrary resolves name against the registered libraries, then the providers
// in registration order. found=false means nothing knows the name.
func (r *Registry) LoadLibrary(name string) (*Library, bool, error) {
	r.mu.RLock()
	lib, ok := r.libraries[name]
	providers := r.providers
	r.mu.RUnlock()
	if ok {
		return lib, true, nil
	}

	for _, p := range providers {
		lib, found, err := p.ProvideLibrary(name)
		if err != nil {
			return nil, false, err
		}
		if found {
			return lib, true, nil
		}
	}
	return nil, false, nil
}

// Builtins returns copies of the built-in tag and filter sets. The copies
// seed the scope of a single parse.
func (r *Registry) Builtins() (map[string]TagFactory, map[string]*Filter) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make(map[string]TagFactory, len(r.tags))
	for k, v := range r.tags {
		tags[k] = v
	}
	filters := make(map[string]*Filter, len(r.filters))
	for k, v := range r.filters {
		filters[k] = v
	}
	return tags, filters
}

// HasTag reports whether a built-in tag is registered
func (r *Registry) HasTag(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tags[name]
	return ok
}

// Libraries returns registered library names in sorted order
func (r *Registry) Libraries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{
		Message: message,
		Name:    name,
	}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Name != StringValueEmpty {
		return fmt.Sprintf(ErrFmtTagMessage, e.Message, e.Name)
	}
	return e.Message
}

// Registry error message constants
const (
	ErrMsgNilFactory           = "tag factory cannot be nil"
	ErrMsgEmptyTagName         = "tag name cannot be empty"
	ErrMsgTagAlreadyExists     = "tag already registered"
	ErrMsgNilLibrary           = "library cannot be nil"
	ErrMsgEmptyLibraryName     = "library name cannot be empty"
	ErrMsgLibraryAlreadyExists = "library already registered"
	ErrMsgNilProvider          = "library provider cannot be nil"
)

// Additional log field constants for registry
const (
	LogFieldCount = "count"
)
