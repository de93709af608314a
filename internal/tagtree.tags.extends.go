package internal

import (
	"context"
	"errors"
	"fmt"
)

// ExtendsNode declares the parent of a template. It owns the rest of the
// template body, whose blocks override the ancestors' blocks by name.
type ExtendsNode struct {
	pos          Position
	Parent       *FilterExpression
	Body         *NodeList
	Blocks       map[string]*BlockNode
	TemplateName string
}

// NewExtendsNode creates a new extends node
func NewExtendsNode(parent *FilterExpression, body *NodeList, templateName string, pos Position) *ExtendsNode {
	return &ExtendsNode{
		pos:          pos,
		Parent:       parent,
		Body:         body,
		Blocks:       collectBlocks(body),
		TemplateName: templateName,
	}
}

// Type returns NodeTypeExtends
func (n *ExtendsNode) Type() NodeType { return NodeTypeExtends }

// Pos returns the source position
func (n *ExtendsNode) Pos() Position { return n.pos }

// Children returns the template body following the tag
func (n *ExtendsNode) Children() []*NodeList { return []*NodeList{n.Body} }

// String returns a string representation
func (n *ExtendsNode) String() string {
	return fmt.Sprintf("ExtendsNode{%s, blocks=%d @ %s}", n.Parent, len(n.Blocks), n.pos)
}

// Render resolves the ancestor chain and renders the root ancestor
func (n *ExtendsNode) Render(ctx context.Context, c *Context) (string, error) {
	return resolveInheritance(ctx, c, n)
}

// parentTemplate resolves the parent reference to a template. Every failure
// is reported as a TagSyntaxError; parse errors of the parent keep their kind.
func (n *ExtendsNode) parentTemplate(ctx context.Context, c *Context, env Environment) (*Template, error) {
	v, err := n.Parent.Resolve(ctx, c)
	if err != nil {
		return nil, NewErrorWithCause(TagSyntaxError, ErrMsgParentUnresolved, TagNameExtends, n.pos, err)
	}

	switch val := v.(type) {
	case nil:
		return nil, NewError(TagSyntaxError, ErrMsgParentUnresolved+" '"+n.Parent.String()+"'", TagNameExtends, n.pos)
	case string:
		if val == StringValueEmpty {
			return nil, NewError(TagSyntaxError, ErrMsgParentUnresolved+" '"+n.Parent.String()+"'", TagNameExtends, n.pos)
		}
		t, err := env.LoadTemplate(ctx, val)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrTemplateNotFound) {
			return nil, NewErrorWithCause(TagSyntaxError, ErrMsgParentNotFound+" '"+val+"'", TagNameExtends, n.pos, err)
		}
		var typed *Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, NewErrorWithCause(TagSyntaxError, ErrMsgParentParseFailed+" '"+val+"'", TagNameExtends, n.pos, err)
	}

	if t, ok := env.TemplateFromValue(v); ok {
		return t, nil
	}
	return nil, NewError(TagSyntaxError, fmt.Sprintf("%s (%T)", ErrMsgParentWrongType, v), TagNameExtends, n.pos)
}

// extendsFactory parses {% extends parent %}. The tag must be the first
// significant node of the template and may appear only once; the remainder of
// the template becomes the extends node body.
func extendsFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	bits := SmartSplit(content)
	if len(bits) != 2 {
		return nil, NewError(TagSyntaxError, ErrMsgExtendsArgs, TagNameExtends, tok.Position)
	}
	if !p.MarkExtends() {
		return nil, NewError(TagSyntaxError, ErrMsgExtendsMultiple, TagNameExtends, tok.Position)
	}
	if p.Depth() > 0 || p.HasTopLevelContent() {
		return nil, NewError(TagSyntaxError, ErrMsgExtendsNotFirst, TagNameExtends, tok.Position)
	}

	parent, err := p.CompileFilter(bits[1])
	if err != nil {
		return nil, err
	}
	body, err := p.ParseUntil()
	if err != nil {
		return nil, err
	}
	return NewExtendsNode(parent, body, p.Name(), tok.Position), nil
}
