package internal

import (
	"context"
	"fmt"
)

// BlockNode is a named region that descendant templates may override
type BlockNode struct {
	pos  Position
	Name string
	Body *NodeList
}

// NewBlockNode creates a new block node
func NewBlockNode(name string, body *NodeList, pos Position) *BlockNode {
	return &BlockNode{pos: pos, Name: name, Body: body}
}

// Type returns NodeTypeBlock
func (n *BlockNode) Type() NodeType { return NodeTypeBlock }

// Pos returns the source position
func (n *BlockNode) Pos() Position { return n.pos }

// Children returns the block body
func (n *BlockNode) Children() []*NodeList { return []*NodeList{n.Body} }

// String returns a string representation
func (n *BlockNode) String() string {
	return fmt.Sprintf("BlockNode{%s, children=%d @ %s}", n.Name, n.Body.Len(), n.pos)
}

// Render renders the effective definition of this block. Outside an
// inheritance chain that is the block's own body. Inside one it is the most
// derived remaining definition, which is held off the stack while it renders
// so that block.super reaches the next level up.
func (n *BlockNode) Render(ctx context.Context, c *Context) (string, error) {
	bc := c.blockContext()
	effective := n
	var popped *BlockNode
	if bc != nil {
		if popped = bc.Pop(n.Name); popped != nil {
			effective = popped
		}
	}

	c.Push(map[string]any{ContextKeyBlock: &blockValue{node: effective, ctx: ctx, c: c}})
	out, err := effective.Body.Render(ctx, c)
	c.Pop()

	if popped != nil {
		bc.Push(n.Name, popped)
	}
	return out, err
}

// blockValue is what {{ block }} resolves to inside a block body
type blockValue struct {
	node *BlockNode
	ctx  context.Context
	c    *Context
}

// Attribute implements Attributer. super renders the next definition up the
// chain, or nothing when this is the topmost one.
func (b *blockValue) Attribute(name string) (any, bool, error) {
	switch name {
	case BlockAttrName:
		return b.node.Name, true, nil
	case BlockAttrSuper:
		bc := b.c.blockContext()
		if bc == nil || bc.Get(b.node.Name) == nil {
			return StringValueEmpty, true, nil
		}
		out, err := b.node.Render(b.ctx, b.c)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
	return nil, false, nil
}

// String renders the block name
func (b *blockValue) String() string {
	return b.node.Name
}

// blockFactory parses {% block name %} ... {% endblock [name] %}
func blockFactory(content string, p *Parser) (Node, error) {
	tok := p.CurrentToken()
	bits := SmartSplit(content)
	if len(bits) != 2 {
		return nil, NewError(TagSyntaxError, ErrMsgBlockArgs, TagNameBlock, tok.Position)
	}
	name := bits[1]
	if !p.DeclareBlock(name) {
		return nil, NewError(TagSyntaxError, ErrMsgBlockDuplicate+" '"+name+"'", TagNameBlock, tok.Position)
	}

	body, err := p.ParseUntil(TagNameEndBlock)
	if err != nil {
		return nil, err
	}
	end := p.TakeNextToken()
	if endBits := SmartSplit(end.Value); len(endBits) > 1 && endBits[1] != name {
		return nil, NewError(UnclosedBlockTagError,
			fmt.Sprintf("%s: opened '%s', closed '%s'", ErrMsgMismatchedEndBlock, name, endBits[1]),
			TagNameEndBlock, end.Position)
	}
	return NewBlockNode(name, body, tok.Position), nil
}
