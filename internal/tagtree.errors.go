package internal

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error categories surfaced by parsing and
// rendering. Resolution failures during inheritance use TagSyntaxError.
type ErrorKind int

// Error kinds
const (
	NoError ErrorKind = iota
	TagSyntaxError
	EmptyVariableError
	EmptyBlockTagError
	InvalidBlockTagError
	UnclosedBlockTagError
	UnknownFilterError
	RenderError
)

// Error kind names
const (
	ErrorKindNameNone          = "NoError"
	ErrorKindNameTagSyntax     = "TagSyntaxError"
	ErrorKindNameEmptyVariable = "EmptyVariableError"
	ErrorKindNameEmptyBlockTag = "EmptyBlockTagError"
	ErrorKindNameInvalidBlock  = "InvalidBlockTagError"
	ErrorKindNameUnclosedBlock = "UnclosedBlockTagError"
	ErrorKindNameUnknownFilter = "UnknownFilterError"
	ErrorKindNameRender        = "RenderError"
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return ErrorKindNameNone
	case TagSyntaxError:
		return ErrorKindNameTagSyntax
	case EmptyVariableError:
		return ErrorKindNameEmptyVariable
	case EmptyBlockTagError:
		return ErrorKindNameEmptyBlockTag
	case InvalidBlockTagError:
		return ErrorKindNameInvalidBlock
	case UnclosedBlockTagError:
		return ErrorKindNameUnclosedBlock
	case UnknownFilterError:
		return ErrorKindNameUnknownFilter
	default:
		return ErrorKindNameRender
	}
}

// ParseErrorKind returns the kind with the given name
func ParseErrorKind(name string) (ErrorKind, bool) {
	for k := NoError; k <= RenderError; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return RenderError, false
}

// Error is the typed error produced by the lexer, parser, tag factories and nodes.
type Error struct {
	Kind     ErrorKind
	Message  string
	Tag      string
	Position Position
	Cause    error
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message, tag string, pos Position) *Error {
	return &Error{
		Kind:     kind,
		Message:  message,
		Tag:      tag,
		Position: pos,
	}
}

// NewErrorWithCause creates an error of the given kind wrapping cause
func NewErrorWithCause(kind ErrorKind, message, tag string, pos Position, cause error) *Error {
	return &Error{
		Kind:     kind,
		Message:  message,
		Tag:      tag,
		Position: pos,
		Cause:    cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Tag != StringValueEmpty {
		msg = fmt.Sprintf(ErrFmtTagMessage, e.Tag, msg)
	}
	if e.Position.Line > 0 {
		msg = fmt.Sprintf(ErrFmtWithPosition, msg, e.Position.String())
	}
	if e.Cause != nil {
		msg = fmt.Sprintf(ErrFmtWithCause, msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of the first *Error in err's chain. Errors that
// carry no kind are reported as RenderError; nil is NoError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return RenderError
}

// PositionOf returns the position of the first *Error in err's chain
func PositionOf(err error) (Position, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Position, true
	}
	return Position{}, false
}

// Error format strings
const (
	ErrFmtWithPosition = "%s at %s"
	ErrFmtTagMessage   = "%s: %s"
	ErrFmtWithCause    = "%s: %v"
)

// Parse error messages
const (
	ErrMsgEmptyVariable        = "empty variable tag"
	ErrMsgEmptyBlockTag        = "empty block tag"
	ErrMsgInvalidBlockTag      = "invalid block tag"
	ErrMsgUnclosedBlockTag     = "unclosed tag, expected one of"
	ErrMsgMismatchedEndBlock   = "endblock name does not match the innermost open block"
	ErrMsgUnknownFilter        = "unknown filter"
	ErrMsgFilterArgMissing     = "filter requires an argument"
	ErrMsgFilterArgUnexpected  = "filter does not accept an argument"
	ErrMsgInvalidExpression    = "invalid expression"
	ErrMsgUnterminatedString   = "unterminated string literal"
	ErrMsgFirstOfNoArgs        = "firstof tag requires at least one argument"
	ErrMsgLoadNoArgs           = "load tag requires at least one library name"
	ErrMsgLibraryNotFound      = "tag library not found"
	ErrMsgSpacelessArgs        = "spaceless tag takes no arguments"
	ErrMsgBlockArgs            = "block tag takes exactly one argument"
	ErrMsgBlockDuplicate       = "block name appears more than once in template"
	ErrMsgExtendsArgs          = "extends tag takes exactly one argument"
	ErrMsgExtendsNotFirst      = "extends must be the first tag in the template"
	ErrMsgExtendsMultiple      = "extends can only appear once in a template"
	ErrMsgIncludeArgs          = "include tag takes exactly one argument"
	ErrMsgUnexpectedEndTag     = "unexpected end tag"
	ErrMsgTagFactoryFailed     = "tag could not be built"
)

// Render error messages
const (
	ErrMsgParentNotFound        = "parent template not found"
	ErrMsgParentUnresolved      = "parent template reference did not resolve"
	ErrMsgParentWrongType       = "parent template reference resolved to an unusable value"
	ErrMsgParentParseFailed     = "parent template failed to parse"
	ErrMsgInheritanceDepth      = "maximum template inheritance depth exceeded"
	ErrMsgInheritanceCycle      = "circular template inheritance"
	ErrMsgIncludeDepth          = "maximum template inclusion depth exceeded"
	ErrMsgIncludeWrongType      = "include reference resolved to an unusable value"
	ErrMsgEnvironmentMissing    = "no template environment available"
	ErrMsgFilterFailed          = "filter execution failed"
	ErrMsgTagRenderFailed       = "tag render failed"
	ErrMsgRenderCanceled        = "render canceled"
)
