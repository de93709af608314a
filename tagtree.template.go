package tagtree

import (
	"context"

	"github.com/itsatony/go-tagtree/internal"
)

// Template is a parsed template bound to the engine that parsed it.
// A template is immutable and may be rendered concurrently.
type Template struct {
	name   string
	source string
	tmpl   *internal.Template
	engine *Engine
	err    error
}

// Name returns the template name, empty for anonymous templates
func (t *Template) Name() string {
	return t.name
}

// Source returns the template source
func (t *Template) Source() string {
	return t.source
}

// Err returns the parse error kept by Engine.Compile, or nil
func (t *Template) Err() error {
	return t.err
}

// Render renders the template against data. On error the output is empty.
func (t *Template) Render(ctx context.Context, data map[string]any) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	c := internal.NewContext(data, environment{engine: t.engine}, t.engine.logger)
	out, err := t.tmpl.Render(ctx, c)
	if err != nil {
		return "", NewRenderError(t.name, err)
	}
	return out, nil
}

// Blocks returns the names of all blocks defined in the template in document order
func (t *Template) Blocks() []string {
	if t.tmpl == nil {
		return nil
	}
	nodes := t.tmpl.Root.NodesOfType(internal.NodeTypeBlock)
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.(*internal.BlockNode).Name)
	}
	return names
}

// Extends reports whether the template declares a parent
func (t *Template) Extends() bool {
	return t.tmpl != nil && t.tmpl.Extends() != nil
}
