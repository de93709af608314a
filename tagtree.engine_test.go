package tagtree

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// siteTemplates is a small three-level site used across the engine tests
var siteTemplates = map[string]string{
	"base.html": "<html><title>{% block title %}Site{% endblock %}</title>" +
		"<body>{% block content %}{% endblock %}</body></html>",
	"section.html": `{% extends "base.html" %}{% block title %}{{ section }} - {{ block.super }}{% endblock %}` +
		`{% block content %}<nav>{{ section }}</nav>{% block main %}{% endblock %}{% endblock %}`,
	"page.html": `{% extends "section.html" %}{% block main %}<p>{{ body }}</p>{% endblock %}`,
	"card.html": "<div>{{ body }}</div>",
}

func newSiteEngine(t *testing.T, opts ...Option) (*Engine, *MemoryLoader) {
	t.Helper()
	loader := NewMemoryLoader(siteTemplates)
	engine, err := New(append([]Option{WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return engine, loader
}

func TestNew(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	assert.NotNil(t, engine)
	assert.Equal(t, DefaultMaxDepth, engine.config.maxDepth)
	assert.Equal(t, DefaultCacheTTL, engine.config.cacheTTL)

	engine = MustNew(WithMaxDepth(4), WithMaxDepth(0))
	assert.Equal(t, 4, engine.config.maxDepth)
}

func TestEngine_Render(t *testing.T) {
	engine := MustNew()
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{"plain text", "hello", nil, "hello"},
		{"variable", "hello {{ name }}", map[string]any{"name": "Ann"}, "hello Ann"},
		{"filters", "{{ name|upper }} {{ missing|default:\"-\" }}", map[string]any{"name": "ann"}, "ANN -"},
		{"firstof", "{% firstof a b \"c\" %}", nil, "c"},
		{"spaceless", "{% spaceless %}<p> <b>x</b> </p>{% endspaceless %}", nil, "<p><b>x</b></p>"},
		{"comment", "a{# hidden #}b", nil, "ab"},
		{"block outside inheritance", "{% block a %}own{% endblock %}", nil, "own"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(ctx, tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEngine_RenderNamed_Inheritance(t *testing.T) {
	engine, _ := newSiteEngine(t)

	out, err := engine.RenderNamed(context.Background(), "page.html", map[string]any{
		"section": "Docs",
		"body":    "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "<html><title>Docs - Site</title><body><nav>Docs</nav><p>Hello</p></body></html>", out)
}

func TestEngine_ExtendsTemplateValue(t *testing.T) {
	engine := MustNew()
	parent := engine.MustParse("[{% block x %}parent{% endblock %}]")

	out, err := engine.Render(context.Background(),
		"{% extends layout %}{% block x %}{{ block.super }}+child{% endblock %}",
		map[string]any{"layout": parent})
	require.NoError(t, err)
	assert.Equal(t, "[parent+child]", out)
}

func TestEngine_Include(t *testing.T) {
	engine, _ := newSiteEngine(t)

	out, err := engine.Render(context.Background(),
		`{% include "card.html" %}{% include "missing.html" %}{% include name %}`,
		map[string]any{"body": "b", "name": "card.html"})
	require.NoError(t, err)
	assert.Equal(t, "<div>b</div><div>b</div>", out)
}

func TestEngine_ErrorKinds(t *testing.T) {
	engine, loader := newSiteEngine(t)
	require.NoError(t, loader.Set("broken.html", "{% block a %}"))
	require.NoError(t, loader.Set("child-of-broken.html", `{% extends "broken.html" %}`))
	require.NoError(t, loader.Set("orphan.html", `{% extends "nowhere.html" %}`))
	ctx := context.Background()

	parseCases := []struct {
		name   string
		source string
		kind   ErrorKind
	}{
		{"empty block tag", "{% %}", EmptyBlockTagError},
		{"empty variable", "{{ }}", EmptyVariableError},
		{"invalid tag", "{% nope %}", InvalidBlockTagError},
		{"unclosed", "{% spaceless %}", UnclosedBlockTagError},
		{"unknown filter", "{{ x|nope }}", UnknownFilterError},
		{"syntax", "{% block %}{% endblock %}", TagSyntaxError},
	}
	for _, tt := range parseCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Parse(tt.source)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	t.Run("parent parse error keeps kind", func(t *testing.T) {
		_, err := engine.RenderNamed(ctx, "child-of-broken.html", nil)
		require.Error(t, err)
		assert.Equal(t, UnclosedBlockTagError, KindOf(err))
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := engine.RenderNamed(ctx, "orphan.html", nil)
		require.Error(t, err)
		assert.Equal(t, TagSyntaxError, KindOf(err))
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := engine.RenderNamed(ctx, "nope.html", nil)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("empty template name", func(t *testing.T) {
		_, err := engine.GetTemplate(ctx, "")
		assert.Error(t, err)
	})

	t.Run("no error", func(t *testing.T) {
		assert.Equal(t, NoError, KindOf(nil))
	})
}

func TestEngine_Compile(t *testing.T) {
	engine := MustNew()

	good := engine.Compile("good", "x{% block a %}{% endblock %}")
	require.NoError(t, good.Err())
	assert.Equal(t, "good", good.Name())
	assert.Equal(t, []string{"a"}, good.Blocks())

	bad := engine.Compile("bad", "{% block a %}")
	require.Error(t, bad.Err())
	assert.Equal(t, "{% block a %}", bad.Source())
	assert.Nil(t, bad.Blocks())
	assert.False(t, bad.Extends())

	out, err := bad.Render(context.Background(), nil)
	assert.Empty(t, out)
	assert.Equal(t, UnclosedBlockTagError, KindOf(err))

	assert.Panics(t, func() { engine.MustParse("{% nope %}") })
}

func TestTemplate_Introspection(t *testing.T) {
	engine, _ := newSiteEngine(t)
	tmpl, err := engine.GetTemplate(context.Background(), "section.html")
	require.NoError(t, err)

	assert.True(t, tmpl.Extends())
	assert.Equal(t, []string{"title", "content", "main"}, tmpl.Blocks())
}

func TestEngine_Libraries(t *testing.T) {
	greet := &Library{
		Name: "greet",
		Tags: map[string]TagFunc{
			"hello": func(_ context.Context, args []string, vars Vars) (string, error) {
				name, _ := vars.Get("user.name")
				return fmt.Sprintf("hello %v (%s)", name, strings.Join(args, ",")), nil
			},
		},
		Filters: map[string]FilterFunc{
			"exclaim": func(in, arg any) (any, error) {
				if arg != nil {
					return fmt.Sprint(in) + fmt.Sprint(arg), nil
				}
				return fmt.Sprint(in) + "!", nil
			},
		},
	}
	engine, err := New(WithLibrary(greet))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := engine.Render(ctx, `{% load greet %}{% hello a "b c" %} {{ x|exclaim }}{{ x|exclaim:"?" }}`,
		map[string]any{"user": map[string]any{"name": "Ann"}, "x": "hi"})
	require.NoError(t, err)
	assert.Equal(t, `hello Ann (a,"b c") hi!hi?`, out)

	t.Run("not loaded", func(t *testing.T) {
		_, err := engine.Render(ctx, `{% hello %}`, nil)
		assert.Equal(t, InvalidBlockTagError, KindOf(err))
	})

	t.Run("duplicate library", func(t *testing.T) {
		assert.Error(t, engine.RegisterLibrary(&Library{Name: "greet"}))
		_, err := New(WithLibrary(greet), WithLibrary(&Library{Name: "greet"}))
		assert.Error(t, err)
	})

	t.Run("nil library", func(t *testing.T) {
		assert.Error(t, engine.RegisterLibrary(nil))
		assert.Error(t, engine.RegisterLibraryProvider(nil))
	})
}

// mapProvider serves libraries from a map
type mapProvider map[string]*Library

func (m mapProvider) Library(name string) (*Library, bool, error) {
	lib, ok := m[name]
	return lib, ok, nil
}

func TestEngine_LibraryProvider(t *testing.T) {
	provider := mapProvider{
		"dyn": {Name: "dyn", Tags: map[string]TagFunc{
			"ping": func(context.Context, []string, Vars) (string, error) { return "pong", nil },
		}},
	}
	engine, err := New(WithLibraryProvider(provider))
	require.NoError(t, err)

	out, err := engine.Render(context.Background(), "{% load dyn %}{% ping %}", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	_, err = engine.Parse("{% load other %}")
	assert.Equal(t, TagSyntaxError, KindOf(err))
}

func TestEngine_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("cached until invalidated", func(t *testing.T) {
		engine, loader := newSiteEngine(t)
		out, err := engine.RenderNamed(ctx, "card.html", map[string]any{"body": "x"})
		require.NoError(t, err)
		assert.Equal(t, "<div>x</div>", out)

		require.NoError(t, loader.Set("card.html", "<span>{{ body }}</span>"))
		out, _ = engine.RenderNamed(ctx, "card.html", map[string]any{"body": "x"})
		assert.Equal(t, "<div>x</div>", out)

		engine.InvalidateCache("card.html")
		out, _ = engine.RenderNamed(ctx, "card.html", map[string]any{"body": "x"})
		assert.Equal(t, "<span>x</span>", out)
	})

	t.Run("invalidate all", func(t *testing.T) {
		engine, loader := newSiteEngine(t)
		_, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		require.NoError(t, loader.Set("card.html", "new"))
		engine.InvalidateCache()
		tmpl, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		assert.Equal(t, "new", tmpl.Source())
	})

	t.Run("same template instance while cached", func(t *testing.T) {
		engine, _ := newSiteEngine(t)
		a, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		b, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("disabled", func(t *testing.T) {
		engine, loader := newSiteEngine(t, WithTemplateCache(-1))
		_, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		require.NoError(t, loader.Set("card.html", "fresh"))
		tmpl, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		assert.Equal(t, "fresh", tmpl.Source())
	})

	t.Run("expires", func(t *testing.T) {
		engine, loader := newSiteEngine(t, WithTemplateCache(10*time.Millisecond))
		_, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		require.NoError(t, loader.Set("card.html", "later"))
		time.Sleep(30 * time.Millisecond)
		tmpl, err := engine.GetTemplate(ctx, "card.html")
		require.NoError(t, err)
		assert.Equal(t, "later", tmpl.Source())
	})
}

func TestEngine_LoaderOrder(t *testing.T) {
	first := NewMemoryLoader(map[string]string{"a": "first"})
	second := NewMemoryLoader(map[string]string{"a": "second", "b": "only second"})
	engine, err := New(WithLoader(first), WithLoader(second), WithLoader(nil))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := engine.RenderNamed(ctx, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = engine.RenderNamed(ctx, "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "only second", out)
}

func TestEngine_MaxDepth(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"root": "{% block a %}r{% endblock %}",
		"l1":   `{% extends "root" %}`,
		"l2":   `{% extends "l1" %}`,
		"self": `x{% include "self" %}`,
	})
	engine, err := New(WithLoader(loader), WithMaxDepth(1))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := engine.RenderNamed(ctx, "l1", nil)
	require.NoError(t, err)
	assert.Equal(t, "r", out)

	_, err = engine.RenderNamed(ctx, "l2", nil)
	assert.Equal(t, TagSyntaxError, KindOf(err))

	_, err = engine.RenderNamed(ctx, "self", nil)
	assert.Equal(t, RenderError, KindOf(err))
}

func TestEngine_ConcurrentRender(t *testing.T) {
	engine, _ := newSiteEngine(t)
	tmpl, err := engine.GetTemplate(context.Background(), "page.html")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("b%d", i)
			out, err := tmpl.Render(context.Background(), map[string]any{"section": "S", "body": body})
			assert.NoError(t, err)
			assert.Contains(t, out, "<p>"+body+"</p>")
		}(i)
	}
	wg.Wait()
}

func TestEngine_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine, _ := newSiteEngine(t, WithLogger(zap.New(core)))

	_, err := engine.RenderNamed(context.Background(), "page.html", map[string]any{})
	require.NoError(t, err)
	_, err = engine.GetTemplate(context.Background(), "page.html")
	require.NoError(t, err)

	assert.NotZero(t, logs.FilterMessage(LogMsgTemplateLoaded).Len())
	assert.NotZero(t, logs.FilterMessage(LogMsgTemplateCacheHit).Len())
	assert.NotZero(t, logs.FilterMessage("inheritance chain resolved").Len())
}
