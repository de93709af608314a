package internal

import (
	"context"
	"errors"
	"fmt"
)

// SimpleTagFunc renders a tag from its raw arguments
type SimpleTagFunc func(ctx context.Context, args []string, c *Context) (string, error)

// SimpleTagNode is a tag without a body whose output comes from a function
type SimpleTagNode struct {
	pos  Position
	Name string
	Args []string
	fn   SimpleTagFunc
}

// Type returns NodeTypeCustom
func (n *SimpleTagNode) Type() NodeType { return NodeTypeCustom }

// Pos returns the source position
func (n *SimpleTagNode) Pos() Position { return n.pos }

// String returns a string representation
func (n *SimpleTagNode) String() string {
	return fmt.Sprintf("SimpleTagNode{%s, args=%d @ %s}", n.Name, len(n.Args), n.pos)
}

// Render calls the tag function
func (n *SimpleTagNode) Render(ctx context.Context, c *Context) (string, error) {
	out, err := n.fn(ctx, n.Args, c)
	if err != nil {
		var typed *Error
		if errors.As(err, &typed) {
			return StringValueEmpty, err
		}
		return StringValueEmpty, NewErrorWithCause(RenderError, ErrMsgTagRenderFailed, n.Name, n.pos, err)
	}
	return out, nil
}

// SimpleTag builds a factory for a body-less tag. Arguments are split like
// other tags and passed through unevaluated.
func SimpleTag(name string, fn SimpleTagFunc) TagFactory {
	return TagFactoryFunc(func(content string, p *Parser) (Node, error) {
		return &SimpleTagNode{
			pos:  p.CurrentToken().Position,
			Name: name,
			Args: SmartSplit(content)[1:],
			fn:   fn,
		}, nil
	})
}
