package internal

import (
	"context"

	"go.uber.org/zap"
)

// BlockContext holds, per block name, the definitions contributed by every
// level of an inheritance chain. Each stack runs from the root ancestor to
// the most derived template, so Pop yields the effective definition and the
// next Pop yields what block.super renders.
type BlockContext struct {
	blocks map[string][]*BlockNode
}

// NewBlockContext creates an empty block context
func NewBlockContext() *BlockContext {
	return &BlockContext{blocks: make(map[string][]*BlockNode)}
}

// AddBlocks registers one level of the chain. Levels are added from the most
// derived template outward, so each level goes underneath the ones before it.
func (bc *BlockContext) AddBlocks(blocks map[string]*BlockNode) {
	for name, b := range blocks {
		bc.blocks[name] = append([]*BlockNode{b}, bc.blocks[name]...)
	}
}

// Pop removes and returns the most derived definition of name, or nil
func (bc *BlockContext) Pop(name string) *BlockNode {
	stack := bc.blocks[name]
	if len(stack) == 0 {
		return nil
	}
	b := stack[len(stack)-1]
	bc.blocks[name] = stack[:len(stack)-1]
	return b
}

// Push puts a definition back on top of the stack for name
func (bc *BlockContext) Push(name string, b *BlockNode) {
	bc.blocks[name] = append(bc.blocks[name], b)
}

// Get returns the most derived remaining definition of name without removing it
func (bc *BlockContext) Get(name string) *BlockNode {
	stack := bc.blocks[name]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// collectBlocks maps block names to the blocks found anywhere under list
func collectBlocks(list *NodeList) map[string]*BlockNode {
	found := list.NodesOfType(NodeTypeBlock)
	blocks := make(map[string]*BlockNode, len(found))
	for _, n := range found {
		b := n.(*BlockNode)
		if _, ok := blocks[b.Name]; !ok {
			blocks[b.Name] = b
		}
	}
	return blocks
}

// resolveInheritance walks the ancestor chain starting at ext, fills a block
// context with every level, and renders the root ancestor once with it.
func resolveInheritance(ctx context.Context, c *Context, ext *ExtendsNode) (string, error) {
	env := c.Environment()
	if env == nil {
		return StringValueEmpty, NewError(TagSyntaxError, ErrMsgEnvironmentMissing, TagNameExtends, ext.pos)
	}

	bc := NewBlockContext()
	bc.AddBlocks(ext.Blocks)

	chain := []string{ext.TemplateName}
	seen := map[string]bool{}
	if ext.TemplateName != StringValueEmpty {
		seen[ext.TemplateName] = true
	}

	var root *Template
	for node := ext; root == nil; {
		if len(chain) > env.MaxDepth() {
			return StringValueEmpty, NewError(TagSyntaxError, ErrMsgInheritanceDepth, TagNameExtends, node.pos)
		}
		parent, err := node.parentTemplate(ctx, c, env)
		if err != nil {
			return StringValueEmpty, err
		}
		if parent.Name != StringValueEmpty {
			if seen[parent.Name] {
				return StringValueEmpty, NewError(TagSyntaxError, ErrMsgInheritanceCycle+" '"+parent.Name+"'", TagNameExtends, node.pos)
			}
			seen[parent.Name] = true
		}
		chain = append(chain, parent.Name)

		if next := parent.Extends(); next != nil {
			bc.AddBlocks(next.Blocks)
			node = next
			continue
		}
		bc.AddBlocks(parent.Blocks())
		root = parent
	}

	c.Logger().Debug(LogMsgInheritanceResolved,
		zap.Strings(LogFieldChain, chain),
		zap.Int(LogFieldDepth, len(chain)-1),
	)

	c.pushState(bc)
	defer c.popState()
	return root.Root.Render(ctx, c)
}
