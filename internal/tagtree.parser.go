package internal

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Parser turns a token stream into a NodeList by dispatching block tags to
// tag factories. Each parser owns a private tag and filter scope seeded from
// the registry built-ins; {% load %} widens that scope for the rest of this
// parse only.
type Parser struct {
	tokens   []Token
	pos      int
	name     string
	registry *Registry
	tags     map[string]TagFactory
	filters  map[string]*Filter
	current  Token
	depth    int
	pending  [][]string
	blocks   map[string]struct{}
	extends  bool
	content  bool // a significant node exists at top level
	logger   *zap.Logger
}

// NewParser creates a parser for tokens. name identifies the template in errors and logs.
func NewParser(tokens []Token, name string, registry *Registry, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry(logger)
	}
	tags, filters := registry.Builtins()
	logger.Debug(LogMsgParserCreated,
		zap.String(LogFieldTemplate, name),
		zap.Int(LogFieldTokens, len(tokens)),
	)
	return &Parser{
		tokens:   tokens,
		name:     name,
		registry: registry,
		tags:     tags,
		filters:  filters,
		blocks:   make(map[string]struct{}),
		logger:   logger,
	}
}

// Parse consumes the whole token stream
func (p *Parser) Parse() (*NodeList, error) {
	list, err := p.parse(nil)
	if err != nil {
		return nil, err
	}
	p.logger.Debug(LogMsgParserEnd,
		zap.String(LogFieldTemplate, p.name),
		zap.Int(LogFieldNodes, list.Len()),
	)
	return list, nil
}

// ParseUntil parses nodes until a block tag whose command is one of stop.
// The stop tag is left unconsumed. Reaching the end of input while stop tags
// are pending is an UnclosedBlockTagError. With no stop tags it parses to the end.
func (p *Parser) ParseUntil(stop ...string) (*NodeList, error) {
	if len(stop) == 0 {
		return p.parse(nil)
	}
	opener := p.current
	p.depth++
	p.pending = append(p.pending, stop)
	defer func() {
		p.depth--
		p.pending = p.pending[:len(p.pending)-1]
	}()

	list, err := p.parse(stop)
	if err != nil {
		return nil, err
	}
	if p.PeekToken().IsEOF() {
		return nil, NewError(UnclosedBlockTagError,
			ErrMsgUnclosedBlockTag+" "+strings.Join(stop, ", "), opener.Command(), opener.Position)
	}
	return list, nil
}

func (p *Parser) parse(stop []string) (*NodeList, error) {
	list := NewNodeList()
	for !p.PeekToken().IsEOF() {
		tok := p.NextToken()
		var node Node
		var err error

		switch tok.Type {
		case TokenTypeComment:
			continue
		case TokenTypeText:
			node = NewTextNode(tok.Value, tok.Position)
		case TokenTypeVariable:
			node, err = p.parseVariable(tok)
		case TokenTypeBlock:
			if isStopTag(tok.Command(), stop) {
				p.pos--
				return list, nil
			}
			node, err = p.parseTag(tok)
		}
		if err != nil {
			return nil, err
		}
		p.track(node)
		list.Append(node)
	}
	return list, nil
}

func (p *Parser) parseVariable(tok Token) (Node, error) {
	if tok.Value == StringValueEmpty {
		return nil, NewError(EmptyVariableError, ErrMsgEmptyVariable, StringValueEmpty, tok.Position)
	}
	expr, err := CompileFilterExpression(tok.Value, p.filters, tok.Position)
	if err != nil {
		return nil, err
	}
	return NewVariableNode(expr, tok.Position), nil
}

func (p *Parser) parseTag(tok Token) (Node, error) {
	cmd := tok.Command()
	if cmd == StringValueEmpty {
		return nil, NewError(EmptyBlockTagError, ErrMsgEmptyBlockTag, StringValueEmpty, tok.Position)
	}
	factory, ok := p.tags[cmd]
	if !ok && strings.HasPrefix(cmd, TagPrefixEnd) {
		// an end tag owned by an enclosing tag means the innermost one was never closed
		for i := len(p.pending) - 2; i >= 0; i-- {
			if isStopTag(cmd, p.pending[i]) {
				inner := p.pending[len(p.pending)-1]
				return nil, NewError(UnclosedBlockTagError,
					ErrMsgUnclosedBlockTag+" "+strings.Join(inner, ", "), cmd, tok.Position)
			}
		}
		return nil, NewError(InvalidBlockTagError, ErrMsgUnexpectedEndTag+" '"+cmd+"'", cmd, tok.Position)
	}
	if !ok {
		return nil, NewError(InvalidBlockTagError, ErrMsgInvalidBlockTag+" '"+cmd+"'", cmd, tok.Position)
	}

	saved := p.current
	p.current = tok
	node, err := factory.GetNode(tok.Value, p)
	p.current = saved
	if err != nil {
		return nil, p.positioned(err, tok)
	}
	return node, nil
}

// positioned attaches the tag position to errors returned without one
func (p *Parser) positioned(err error, tok Token) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Position.Line == 0 {
			e.Position = tok.Position
		}
		if e.Tag == StringValueEmpty {
			e.Tag = tok.Command()
		}
		return err
	}
	return NewErrorWithCause(TagSyntaxError, ErrMsgTagFactoryFailed, tok.Command(), tok.Position, err)
}

// track records whether significant content has appeared at top level
func (p *Parser) track(node Node) {
	if p.depth > 0 || p.content {
		return
	}
	if text, ok := node.(*TextNode); ok && text.IsWhitespace() {
		return
	}
	p.content = true
}

func isStopTag(cmd string, stop []string) bool {
	for _, s := range stop {
		if s == cmd {
			return true
		}
	}
	return false
}

// NextToken consumes and returns the next token
func (p *Parser) NextToken() Token {
	tok := p.tokens[p.pos]
	if !tok.IsEOF() {
		p.pos++
	}
	return tok
}

// TakeNextToken consumes the next token, typically the end tag left by ParseUntil
func (p *Parser) TakeNextToken() Token {
	return p.NextToken()
}

// PeekToken returns the next token without consuming it
func (p *Parser) PeekToken() Token {
	return p.tokens[p.pos]
}

// CurrentToken returns the block token whose factory is running
func (p *Parser) CurrentToken() Token {
	return p.current
}

// Depth returns how many ParseUntil calls with stop tags are open
func (p *Parser) Depth() int {
	return p.depth
}

// HasTopLevelContent reports whether a non-whitespace node was parsed at top level
func (p *Parser) HasTopLevelContent() bool {
	return p.content
}

// MarkExtends records an extends tag and reports whether it is the first one
func (p *Parser) MarkExtends() bool {
	if p.extends {
		return false
	}
	p.extends = true
	return true
}

// DeclareBlock records a block name and reports whether it is new in this template
func (p *Parser) DeclareBlock(name string) bool {
	if _, ok := p.blocks[name]; ok {
		return false
	}
	p.blocks[name] = struct{}{}
	return true
}

// LoadLibrary makes the tags and filters of a library visible to the rest of this parse
func (p *Parser) LoadLibrary(name string) error {
	lib, found, err := p.registry.LoadLibrary(name)
	if err != nil {
		return NewErrorWithCause(TagSyntaxError, ErrMsgLibraryNotFound+" '"+name+"'", TagNameLoad, p.current.Position, err)
	}
	if !found {
		return NewError(TagSyntaxError, ErrMsgLibraryNotFound+" '"+name+"'", TagNameLoad, p.current.Position)
	}
	for tag, factory := range lib.Tags {
		p.tags[tag] = factory
	}
	for fname, f := range lib.Filters {
		p.filters[fname] = f
	}
	p.logger.Debug(LogMsgLibraryLoaded,
		zap.String(LogFieldTemplate, p.name),
		zap.String(LogFieldLibrary, name),
	)
	return nil
}

// CompileFilter compiles an expression against the filters visible at this point of the parse
func (p *Parser) CompileFilter(expr string) (*FilterExpression, error) {
	return CompileFilterExpression(expr, p.filters, p.current.Position)
}

// Name returns the template name
func (p *Parser) Name() string {
	return p.name
}

// Logger returns the parser logger
func (p *Parser) Logger() *zap.Logger {
	return p.logger
}
