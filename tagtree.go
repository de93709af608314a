// Package tagtree is a text-templating engine built around pluggable tags and
// block-based template inheritance.
//
// Templates use {{ variable|filter:arg }} for output, {% tag ... %} for tags and
// {# ... #} for comments. Built-in tags are firstof, load, spaceless, block,
// extends and include.
//
// Quick start:
//
//	engine, err := tagtree.New(tagtree.WithLoader(tagtree.NewMemoryLoader(map[string]string{
//	    "base": "<h1>{% block title %}Untitled{% endblock %}</h1>",
//	})))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := engine.Render(ctx, `{% extends "base" %}{% block title %}{{ name }}{% endblock %}`,
//	    map[string]any{"name": "Hello"})
//	// out == "<h1>Hello</h1>"
//
// Inheritance: a template whose first tag is {% extends parent %} renders its
// parent with each {% block name %} replaced by the most derived definition of
// that name. Inside an override {{ block.super }} renders the definition one
// level up the chain.
//
// Tag libraries: {% load name %} makes the tags and filters of a registered
// Library visible for the rest of that template. Libraries are never inherited
// through extends. Libraries can also be written as Starlark scripts, see
// WithScriptDirs.
package tagtree

// Version is the library version
const Version = "0.3.0"
