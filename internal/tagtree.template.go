package internal

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrTemplateNotFound is returned by an Environment when no loader knows a template name
var ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)

// ErrMsgTemplateNotFound is the message of ErrTemplateNotFound
const ErrMsgTemplateNotFound = "template not found"

// Environment supplies the template lookups that extends and include need at render time
type Environment interface {
	// LoadTemplate returns the parsed template registered under name.
	// Unknown names return an error matching ErrTemplateNotFound.
	LoadTemplate(ctx context.Context, name string) (*Template, error)
	// TemplateFromValue converts a render-data value holding a template
	TemplateFromValue(v any) (*Template, bool)
	// MaxDepth bounds inheritance chains and include nesting
	MaxDepth() int
}

// Template is a parsed template: its name and the top-level node list
type Template struct {
	Name    string
	Root    *NodeList
	extends *ExtendsNode
}

// NewTemplate wraps a parsed node list
func NewTemplate(name string, root *NodeList) *Template {
	t := &Template{Name: name, Root: root}
	for _, n := range root.Nodes() {
		if ext, ok := n.(*ExtendsNode); ok {
			t.extends = ext
			break
		}
	}
	return t
}

// ParseTemplate lexes and parses source into a template
func ParseTemplate(name, source string, registry *Registry, logger *zap.Logger) (*Template, error) {
	tokens := NewLexer(source, logger).Tokenize()
	root, err := NewParser(tokens, name, registry, logger).Parse()
	if err != nil {
		return nil, err
	}
	return NewTemplate(name, root), nil
}

// Extends returns the extends node of the template, or nil
func (t *Template) Extends() *ExtendsNode {
	return t.extends
}

// Blocks returns the blocks defined anywhere in the template by name
func (t *Template) Blocks() map[string]*BlockNode {
	return collectBlocks(t.Root)
}

// Render renders the template. An extending template renders through its
// ancestor chain; whitespace outside the extends node is dropped.
func (t *Template) Render(ctx context.Context, c *Context) (string, error) {
	if t.extends != nil {
		return t.extends.Render(ctx, c)
	}
	return t.Root.Render(ctx, c)
}
