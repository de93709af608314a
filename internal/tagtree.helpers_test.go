package internal

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Test environment ---

// mapEnvironment serves templates parsed on demand from a source map
type mapEnvironment struct {
	registry *Registry
	sources  map[string]string
	maxDepth int
}

func newMapEnvironment(sources map[string]string) *mapEnvironment {
	if sources == nil {
		sources = make(map[string]string)
	}
	return &mapEnvironment{
		registry: newTestRegistry(),
		sources:  sources,
		maxDepth: DefaultMaxDepth,
	}
}

func (e *mapEnvironment) LoadTemplate(_ context.Context, name string) (*Template, error) {
	source, ok := e.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return ParseTemplate(name, source, e.registry, nil)
}

func (e *mapEnvironment) TemplateFromValue(v any) (*Template, bool) {
	t, ok := v.(*Template)
	return t, ok && t != nil
}

func (e *mapEnvironment) MaxDepth() int {
	return e.maxDepth
}

// render parses name from the environment and renders it with data
func (e *mapEnvironment) render(name string, data map[string]any) (string, error) {
	tmpl, err := e.LoadTemplate(context.Background(), name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(context.Background(), NewContext(data, e, nil))
}

// renderSource parses an anonymous template and renders it with data
func (e *mapEnvironment) renderSource(source string, data map[string]any) (string, error) {
	tmpl, err := ParseTemplate("", source, e.registry, nil)
	if err != nil {
		return "", err
	}
	return tmpl.Render(context.Background(), NewContext(data, e, nil))
}

// --- Test registry ---

// newTestRegistry returns a registry with the built-in tags and a
// "testtags" library whose echo tag joins its arguments with spaces
func newTestRegistry() *Registry {
	r := NewRegistry(nil)
	RegisterBuiltins(r)
	_ = r.RegisterLibrary(&Library{
		Name: "testtags",
		Tags: map[string]TagFactory{
			"echo": SimpleTag("echo", func(_ context.Context, args []string, _ *Context) (string, error) {
				return strings.Join(args, " "), nil
			}),
		},
		Filters: map[string]*Filter{
			"shout": {Name: "shout", Fn: func(in, _ any) (any, error) {
				return strings.ToUpper(Stringify(in)) + "!", nil
			}},
		},
	})
	return r
}

// parseSource parses source against the test registry
func parseSource(t *testing.T, source string) (*Template, error) {
	t.Helper()
	return ParseTemplate("test", source, newTestRegistry(), nil)
}

// mustParse parses source and fails the test on error
func mustParse(t *testing.T, source string) *Template {
	t.Helper()
	tmpl, err := parseSource(t, source)
	require.NoError(t, err)
	return tmpl
}

// requireKind asserts that err is a typed error of kind
func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
