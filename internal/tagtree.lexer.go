package internal

import (
	"strings"

	"go.uber.org/zap"
)

// Lexer splits template source into text, variable, block and comment tokens
type Lexer struct {
	source string
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger
}

// NewLexer creates a new lexer for source
func NewLexer(source string, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns a token stream terminated by EOF.
// Markup whose closing delimiter never appears is emitted as text.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	var text strings.Builder
	textPos := l.currentPosition()

	flushText := func() {
		if text.Len() > 0 {
			tokens = append(tokens, NewToken(TokenTypeText, text.String(), textPos))
			text.Reset()
		}
	}

	for !l.isAtEnd() {
		tokenType, closeDelim, ok := l.matchOpen()
		if ok {
			end := strings.Index(l.source[l.pos+LenDelim:], closeDelim)
			if end >= 0 {
				flushText()
				pos := l.currentPosition()
				content := l.source[l.pos+LenDelim : l.pos+LenDelim+end]
				l.advanceN(LenDelim + end + LenDelim)
				tokens = append(tokens, NewToken(tokenType, strings.TrimSpace(content), pos))
				textPos = l.currentPosition()
				continue
			}
		}
		if text.Len() == 0 {
			textPos = l.currentPosition()
		}
		text.WriteByte(l.advance())
	}
	flushText()

	tokens = append(tokens, NewEOFToken(l.currentPosition()))
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens
}

// matchOpen reports whether an opening delimiter starts at the current position
func (l *Lexer) matchOpen() (TokenType, string, bool) {
	switch {
	case l.matchStr(StrVariableOpen):
		return TokenTypeVariable, StrVariableClose, true
	case l.matchStr(StrBlockOpen):
		return TokenTypeBlock, StrBlockClose, true
	case l.matchStr(StrCommentOpen):
		return TokenTypeComment, StrCommentClose, true
	default:
		return TokenTypeText, StringValueEmpty, false
	}
}

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}
