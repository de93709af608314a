package internal

import (
	"context"
	"fmt"
	"strings"
)

// Node is the interface all renderable template nodes implement
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the source position of this node
	Pos() Position
	// Render produces the node output against c
	Render(ctx context.Context, c *Context) (string, error)
	// String returns a human-readable representation
	String() string
}

// Container is implemented by nodes that own nested node lists.
// NodesOfType descends through every list a container returns.
type Container interface {
	Children() []*NodeList
}

// NodeList is an ordered sequence of nodes. It is built during parse and
// not modified afterwards.
type NodeList struct {
	nodes           []Node
	containsNonText bool
}

// NewNodeList creates an empty node list
func NewNodeList() *NodeList {
	return &NodeList{}
}

// Append adds a node to the end of the list
func (l *NodeList) Append(n Node) {
	if n.Type() != NodeTypeText {
		l.containsNonText = true
	}
	l.nodes = append(l.nodes, n)
}

// Nodes returns the nodes in document order
func (l *NodeList) Nodes() []Node {
	return l.nodes
}

// Len returns the number of direct children
func (l *NodeList) Len() int {
	return len(l.nodes)
}

// ContainsNonText reports whether any direct child is not a text node
func (l *NodeList) ContainsNonText() bool {
	return l.containsNonText
}

// Render concatenates the output of every node. The first error aborts.
func (l *NodeList) Render(ctx context.Context, c *Context) (string, error) {
	var sb strings.Builder
	for _, n := range l.nodes {
		if err := ctx.Err(); err != nil {
			return StringValueEmpty, NewErrorWithCause(RenderError, ErrMsgRenderCanceled, StringValueEmpty, n.Pos(), err)
		}
		out, err := n.Render(ctx, c)
		if err != nil {
			return StringValueEmpty, err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// NodesOfType returns every node of type t in depth-first document order,
// descending into the lists owned by container nodes.
func (l *NodeList) NodesOfType(t NodeType) []Node {
	var found []Node
	l.collect(t, &found)
	return found
}

func (l *NodeList) collect(t NodeType, found *[]Node) {
	for _, n := range l.nodes {
		if n.Type() == t {
			*found = append(*found, n)
		}
		if cont, ok := n.(Container); ok {
			for _, child := range cont.Children() {
				if child != nil {
					child.collect(t, found)
				}
			}
		}
	}
}

// TextNode renders literal text
type TextNode struct {
	pos     Position
	Content string
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{pos: pos, Content: content}
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType { return NodeTypeText }

// Pos returns the source position
func (n *TextNode) Pos() Position { return n.pos }

// Render returns the text unchanged
func (n *TextNode) Render(_ context.Context, _ *Context) (string, error) {
	return n.Content, nil
}

// String returns a string representation
func (n *TextNode) String() string {
	content := n.Content
	if len(content) > MaxStringDisplayLength {
		content = content[:TruncatedStringLength] + TruncationSuffix
	}
	return fmt.Sprintf("TextNode{%q @ %s}", content, n.pos)
}

// IsWhitespace reports whether the text is whitespace only
func (n *TextNode) IsWhitespace() bool {
	return strings.TrimSpace(n.Content) == StringValueEmpty
}

// VariableNode renders a {{ expression }}
type VariableNode struct {
	pos  Position
	Expr *FilterExpression
}

// NewVariableNode creates a new variable node
func NewVariableNode(expr *FilterExpression, pos Position) *VariableNode {
	return &VariableNode{pos: pos, Expr: expr}
}

// Type returns NodeTypeVariable
func (n *VariableNode) Type() NodeType { return NodeTypeVariable }

// Pos returns the source position
func (n *VariableNode) Pos() Position { return n.pos }

// Render evaluates the expression. Missing variables render empty.
func (n *VariableNode) Render(ctx context.Context, c *Context) (string, error) {
	v, err := n.Expr.Resolve(ctx, c)
	if err != nil {
		return StringValueEmpty, err
	}
	return Stringify(v), nil
}

// String returns a string representation
func (n *VariableNode) String() string {
	return fmt.Sprintf("VariableNode{%s @ %s}", n.Expr, n.pos)
}
