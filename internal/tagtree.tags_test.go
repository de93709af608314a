package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOf_Render(t *testing.T) {
	env := newMapEnvironment(nil)

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{"all falsy", "{% firstof a b c %}", map[string]any{"a": 0, "b": 0, "c": 0}, ""},
		{"first truthy", "{% firstof a b c %}", map[string]any{"a": 1, "b": 0, "c": 0}, "1"},
		{"second truthy", "{% firstof a b c %}", map[string]any{"a": 0, "b": 2, "c": 0}, "2"},
		{"third truthy", "{% firstof a b c %}", map[string]any{"a": 0, "b": 0, "c": 3}, "3"},
		{"stops at first", "{% firstof a b c %}", map[string]any{"a": 1, "b": 2, "c": 3}, "1"},
		{"missing variables are falsy", "{% firstof a b c %}", map[string]any{"c": "x"}, "x"},
		{"nothing defined", "{% firstof a b c %}", nil, ""},
		{"literal fallback", `{% firstof a b "fallback" %}`, nil, "fallback"},
		{"literal with spaces", `{% firstof a "two words" %}`, nil, "two words"},
		{"filters apply", "{% firstof a|upper b %}", map[string]any{"a": "low"}, "LOW"},
		{"empty string falsy", "{% firstof a b %}", map[string]any{"a": "", "b": "y"}, "y"},
		{"empty list falsy", "{% firstof a b %}", map[string]any{"a": []any{}, "b": "y"}, "y"},
		{"dotted path", "{% firstof user.nick user.name %}", map[string]any{"user": map[string]any{"name": "Ann"}}, "Ann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.renderSource(tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSpaceless_Render(t *testing.T) {
	env := newMapEnvironment(nil)

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{
			name:     "between tags",
			source:   "{% spaceless %} <b>    <i> text </i>    </b> {% endspaceless %}",
			expected: " <b><i> text </i></b> ",
		},
		{
			name:     "newlines and tabs",
			source:   "{% spaceless %}<ul>\n\t<li>a</li>\n\t<li>b</li>\n</ul>{% endspaceless %}",
			expected: "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name:     "applies to rendered output",
			source:   "{% spaceless %}<p>{{ gap }}</p>{% endspaceless %}",
			data:     map[string]any{"gap": "   <br>   "},
			expected: "<p><br></p>",
		},
		{
			name:     "text between tags kept",
			source:   "{% spaceless %}<a> x </a>{% endspaceless %}",
			expected: "<a> x </a>",
		},
		{
			name:     "empty body",
			source:   "a{% spaceless %}{% endspaceless %}b",
			expected: "ab",
		},
		{
			name:     "nested blocks",
			source:   "{% spaceless %}<div> {% block a %}<p> </p>{% endblock %} </div>{% endspaceless %}",
			expected: "<div><p></p></div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.renderSource(tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestStripSpacesBetweenTags(t *testing.T) {
	assert.Equal(t, "<a><b>", StripSpacesBetweenTags("<a> \n <b>"))
	assert.Equal(t, " <a> ", StripSpacesBetweenTags(" <a> "))
	assert.Equal(t, "a b", StripSpacesBetweenTags("a b"))
}

func TestLoad_Node(t *testing.T) {
	tmpl := mustParse(t, "{% load testtags %}")
	loads := tmpl.Root.NodesOfType(NodeTypeLoad)
	require.Len(t, loads, 1)
	assert.Equal(t, []string{"testtags"}, loads[0].(*LoadNode).Libraries)

	out, err := tmpl.Render(context.Background(), NewContext(nil, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInclude_Render(t *testing.T) {
	sources := map[string]string{
		"basic-syntax01": "something cool",
		"basic-syntax02": "{{ headline }}",
		"base":           "[{% block content %}base{% endblock %}]",
		"child":          `{% extends "base" %}{% block content %}child{% endblock %}`,
		"widget":         "<{% block content %}widget{% endblock %}>",
		"page":           `{% extends "base" %}{% block content %}{% include "widget" %}{% endblock %}`,
		"setter":         "{% firstof inner outer %}",
	}
	env := newMapEnvironment(sources)
	included, err := ParseTemplate("", "from value {{ headline }}", env.registry, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{"include01", `{% include "basic-syntax01" %}`, nil, "something cool"},
		{"include02", `{% include "basic-syntax02" %}`, map[string]any{"headline": "Included"}, "Included"},
		{"include03", `{% include template_name %}`, map[string]any{"template_name": "basic-syntax02", "headline": "Included"}, "Included"},
		{"include04", `a{% include "nonexistent" %}b`, nil, "ab"},
		{"include05", `{% include "child" %}`, nil, "[child]"},
		{"include06", `{% include "page" %}`, nil, "[<widget>]"},
		{"include from template value", `{% include tmpl %}`, map[string]any{"tmpl": included, "headline": "x"}, "from value x"},
		{"missing variable renders empty", `a{% include nothing %}b`, nil, "ab"},
		{"sees enclosing variables", `{% include "setter" %}`, map[string]any{"outer": "o"}, "o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.renderSource(tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestInclude_InsideOverriddenBlock(t *testing.T) {
	// the included widget defines a block with the same name as the one it
	// is included from; it must render its own body, not the override
	env := newMapEnvironment(map[string]string{
		"base":   "{% block content %}base{% endblock %}",
		"widget": "({% block content %}widget{% endblock %})",
		"child":  `{% extends "base" %}{% block content %}{{ block.super }}+{% include "widget" %}{% endblock %}`,
	})
	out, err := env.render("child", nil)
	require.NoError(t, err)
	assert.Equal(t, "base+(widget)", out)
}

func TestInclude_Errors(t *testing.T) {
	t.Run("wrong value type", func(t *testing.T) {
		env := newMapEnvironment(nil)
		_, err := env.renderSource(`{% include 42 %}`, nil)
		requireKind(t, err, RenderError)
		assert.Contains(t, err.Error(), ErrMsgIncludeWrongType)
	})

	t.Run("recursive include hits depth limit", func(t *testing.T) {
		env := newMapEnvironment(map[string]string{"loop": `x{% include "loop" %}`})
		env.maxDepth = 4
		_, err := env.render("loop", nil)
		requireKind(t, err, RenderError)
		assert.Contains(t, err.Error(), ErrMsgIncludeDepth)
	})

	t.Run("included parse error keeps its kind", func(t *testing.T) {
		env := newMapEnvironment(map[string]string{"bad": "{% frobnicate %}"})
		_, err := env.renderSource(`{% include "bad" %}`, nil)
		requireKind(t, err, InvalidBlockTagError)
	})

	t.Run("no environment", func(t *testing.T) {
		tmpl := mustParse(t, `{% include "x" %}`)
		_, err := tmpl.Render(context.Background(), NewContext(nil, nil, nil))
		requireKind(t, err, RenderError)
	})
}

func TestSimpleTag_Errors(t *testing.T) {
	r := newTestRegistry()
	r.MustRegisterTag("fail", SimpleTag("fail", func(context.Context, []string, *Context) (string, error) {
		return "", assert.AnError
	}))

	tmpl, err := ParseTemplate("", "{% fail a b %}", r, nil)
	require.NoError(t, err)

	nodes := tmpl.Root.NodesOfType(NodeTypeCustom)
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"a", "b"}, nodes[0].(*SimpleTagNode).Args)

	_, err = tmpl.Render(context.Background(), NewContext(nil, nil, nil))
	requireKind(t, err, RenderError)
	assert.ErrorIs(t, err, assert.AnError)
}
