package tagtree

import (
	"context"

	"github.com/itsatony/go-tagtree/internal"
)

// Vars gives tag functions read access to the render variables
type Vars interface {
	// Get resolves a dotted path such as "user.name" or "items.0"
	Get(path string) (any, bool)
}

// TagFunc renders a body-less tag. args are the whitespace-separated tag
// arguments with quoted strings kept intact.
type TagFunc func(ctx context.Context, args []string, vars Vars) (string, error)

// FilterFunc transforms a value. arg is nil when the filter was used without one.
type FilterFunc func(input any, arg any) (any, error)

// Library is a named set of tags and filters made visible by {% load name %}
type Library struct {
	Name    string
	Tags    map[string]TagFunc
	Filters map[string]FilterFunc
}

// LibraryProvider supplies libraries on demand when {% load %} names one
// that is not registered. found=false means the provider does not know it.
type LibraryProvider interface {
	Library(name string) (lib *Library, found bool, err error)
}

// contextVars adapts the render context to Vars
type contextVars struct {
	c *internal.Context
}

// Get implements Vars
func (v contextVars) Get(path string) (any, bool) {
	val, found, err := v.c.Resolve(path)
	if err != nil {
		return nil, false
	}
	return val, found
}

// toInternal converts a library to the engine representation
func (lib *Library) toInternal() *internal.Library {
	out := &internal.Library{
		Name:    lib.Name,
		Tags:    make(map[string]internal.TagFactory, len(lib.Tags)),
		Filters: make(map[string]*internal.Filter, len(lib.Filters)),
	}
	for name, fn := range lib.Tags {
		tagFn := fn
		out.Tags[name] = internal.SimpleTag(name, func(ctx context.Context, args []string, c *internal.Context) (string, error) {
			return tagFn(ctx, args, contextVars{c: c})
		})
	}
	for name, fn := range lib.Filters {
		out.Filters[name] = &internal.Filter{
			Name:    name,
			ArgMode: internal.FilterArgOptional,
			Fn:      fn,
		}
	}
	return out
}

// providerAdapter adapts a LibraryProvider to the engine registry
type providerAdapter struct {
	provider LibraryProvider
}

// ProvideLibrary implements internal.LibraryProvider
func (a *providerAdapter) ProvideLibrary(name string) (*internal.Library, bool, error) {
	lib, found, err := a.provider.Library(name)
	if err != nil || !found || lib == nil {
		return nil, false, err
	}
	return lib.toInternal(), true, nil
}
