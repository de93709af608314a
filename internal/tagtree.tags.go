package internal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// RegisterBuiltins adds the built-in tags to r
func RegisterBuiltins(r *Registry) {
	r.MustRegisterTag(TagNameFirstOf, TagFactoryFunc(firstOfFactory))
	r.MustRegisterTag(TagNameLoad, TagFactoryFunc(loadFactory))
	r.MustRegisterTag(TagNameSpaceless, TagFactoryFunc(spacelessFactory))
	r.MustRegisterTag(TagNameBlock, TagFactoryFunc(blockFactory))
	r.MustRegisterTag(TagNameExtends, TagFactoryFunc(extendsFactory))
	r.MustRegisterTag(TagNameInclude, TagFactoryFunc(includeFactory))
}

// FirstOfNode renders the first truthy of its expressions
type FirstOfNode struct {
	pos   Position
	Exprs []*FilterExpression
}

// Type returns NodeTypeFirstOf
func (n *FirstOfNode) Type() NodeType { return NodeTypeFirstOf }

// Pos returns the source position
func (n *FirstOfNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *FirstOfNode) String() string {
	return fmt.Sprintf("FirstOfNode{exprs=%d @ %s}", len(n.Exprs), n.pos)
}

// Render evaluates left to right and stops at the first truthy value.
// Missing variables are falsy. If nothing is truthy the output is empty.
func (n *FirstOfNode) Render(ctx context.Context, c *Context) (string, error) {
	for _, expr := range n.Exprs {
		v, err := expr.Resolve(ctx, c)
		if err != nil {
			return StringValueEmpty, err
		}
		if Truthy(v) {
			return Stringify(v), nil
		}
	}
	return StringValueEmpty, nil
}

func firstOfFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	bits := SmartSplit(content)[1:]
	if len(bits) == 0 {
		return nil, NewError(TagSyntaxError, ErrMsgFirstOfNoArgs, TagNameFirstOf, tok.Position)
	}
	node := &FirstOfNode{pos: tok.Position, Exprs: make([]*FilterExpression, 0, len(bits))}
	for _, bit := range bits {
		expr, err := p.CompileFilter(bit)
		if err != nil {
			return nil, err
		}
		node.Exprs = append(node.Exprs, expr)
	}
	return node, nil
}

// LoadNode marks where libraries were loaded. Its effect is at parse time.
type LoadNode struct {
	pos       Position
	Libraries []string
}

// Type returns NodeTypeLoad
func (n *LoadNode) Type() NodeType { return NodeTypeLoad }

// Pos returns the source position
func (n *LoadNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *LoadNode) String() string {
	return fmt.Sprintf("LoadNode{%s @ %s}", strings.Join(n.Libraries, ","), n.pos)
}

// Render always produces nothing
func (n *LoadNode) Render(_ context.Context, _ *Context) (string, error) {
	return StringValueEmpty, nil
}

func loadFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	names := SmartSplit(content)[1:]
	if len(names) == 0 {
		return nil, NewError(TagSyntaxError, ErrMsgLoadNoArgs, TagNameLoad, tok.Position)
	}
	for _, name := range names {
		if err := p.LoadLibrary(name); err != nil {
			return nil, err
		}
	}
	return &LoadNode{pos: tok.Position, Libraries: names}, nil
}

// spacelessPattern matches whitespace between a closing and an opening angle bracket
var spacelessPattern = regexp.MustCompile(`>\s+<`)

// SpacelessNode removes whitespace between tags in its rendered body
type SpacelessNode struct {
	pos  Position
	Body *NodeList
}

// Type returns NodeTypeSpaceless
func (n *SpacelessNode) Type() NodeType { return NodeTypeSpaceless }

// Pos returns the source position
func (n *SpacelessNode) Pos() Position { return n.pos }

// Children returns the wrapped body
func (n *SpacelessNode) Children() []*NodeList { return []*NodeList{n.Body} }

// String returns a string representation
func (n *SpacelessNode) String() string {
	return fmt.Sprintf("SpacelessNode{children=%d @ %s}", n.Body.Len(), n.pos)
}

// Render renders the body and collapses every "> <" run to "><".
// Leading and trailing whitespace is kept.
func (n *SpacelessNode) Render(ctx context.Context, c *Context) (string, error) {
	out, err := n.Body.Render(ctx, c)
	if err != nil {
		return StringValueEmpty, err
	}
	return StripSpacesBetweenTags(out), nil
}

// StripSpacesBetweenTags collapses whitespace runs between '>' and '<'
func StripSpacesBetweenTags(s string) string {
	return spacelessPattern.ReplaceAllString(s, "><")
}

func spacelessFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	if len(SmartSplit(content)) != 1 {
		return nil, NewError(TagSyntaxError, ErrMsgSpacelessArgs, TagNameSpaceless, tok.Position)
	}
	body, err := p.ParseUntil(TagNameEndSpaceless)
	if err != nil {
		return nil, err
	}
	p.TakeNextToken()
	return &SpacelessNode{pos: tok.Position, Body: body}, nil
}

// IncludeNode renders another template in place
type IncludeNode struct {
	pos      Position
	Template *FilterExpression
}

// Type returns NodeTypeInclude
func (n *IncludeNode) Type() NodeType { return NodeTypeInclude }

// Pos returns the source position
func (n *IncludeNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *IncludeNode) String() string {
	return fmt.Sprintf("IncludeNode{%s @ %s}", n.Template, n.pos)
}

// Render renders the referenced template with the current variables in a new
// scope and its own block state. A template that cannot be found renders empty.
func (n *IncludeNode) Render(ctx context.Context, c *Context) (string, error) {
	env := c.Environment()
	if env == nil {
		return StringValueEmpty, NewError(RenderError, ErrMsgEnvironmentMissing, TagNameInclude, n.pos)
	}
	v, err := n.Template.Resolve(ctx, c)
	if err != nil {
		return StringValueEmpty, err
	}

	var tmpl *Template
	switch val := v.(type) {
	case nil:
		return StringValueEmpty, nil
	case string:
		tmpl, err = env.LoadTemplate(ctx, val)
		if errors.Is(err, ErrTemplateNotFound) {
			c.Logger().Debug(LogMsgIncludeMissing, zap.String(LogFieldTemplate, val))
			return StringValueEmpty, nil
		}
		if err != nil {
			return StringValueEmpty, err
		}
	default:
		t, ok := env.TemplateFromValue(v)
		if !ok {
			return StringValueEmpty, NewError(RenderError, fmt.Sprintf("%s (%T)", ErrMsgIncludeWrongType, v), TagNameInclude, n.pos)
		}
		tmpl = t
	}

	if c.depth >= env.MaxDepth() {
		return StringValueEmpty, NewError(RenderError, ErrMsgIncludeDepth, TagNameInclude, n.pos)
	}
	c.depth++
	c.Push(nil)
	c.pushState(nil)
	defer func() {
		c.popState()
		c.Pop()
		c.depth--
	}()
	return tmpl.Render(ctx, c)
}

func includeFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	bits := SmartSplit(content)
	if len(bits) != 2 {
		return nil, NewError(TagSyntaxError, ErrMsgIncludeArgs, TagNameInclude, tok.Position)
	}
	expr, err := p.CompileFilter(bits[1])
	if err != nil {
		return nil, err
	}
	return &IncludeNode{pos: tok.Position, Template: expr}, nil
}
