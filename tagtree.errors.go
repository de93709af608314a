package tagtree

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-tagtree/internal"
)

// ErrorKind classifies parse and render failures
type ErrorKind = internal.ErrorKind

// Error kinds. Failures to resolve a parent template during inheritance are
// reported as TagSyntaxError.
const (
	NoError               = internal.NoError
	TagSyntaxError        = internal.TagSyntaxError
	EmptyVariableError    = internal.EmptyVariableError
	EmptyBlockTagError    = internal.EmptyBlockTagError
	InvalidBlockTagError  = internal.InvalidBlockTagError
	UnclosedBlockTagError = internal.UnclosedBlockTagError
	UnknownFilterError    = internal.UnknownFilterError
	RenderError           = internal.RenderError
)

// ErrTemplateNotFound matches (via errors.Is) every error reporting an unknown template name
var ErrTemplateNotFound = internal.ErrTemplateNotFound

// KindOf returns the kind of err. nil is NoError; errors that carry no kind
// are RenderError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) {
		if name, ok := customErr.GetMetadata(MetaKeyKind); ok {
			if kind, ok := internal.ParseErrorKind(name); ok {
				return kind
			}
		}
	}
	return internal.KindOf(err)
}

// NewParseError wraps a parse failure of the named template
func NewParseError(name string, cause error) error {
	return wrapKindError(cause, ErrCodeParse, ErrMsgParseFailed, name)
}

// NewRenderError wraps a render failure of the named template
func NewRenderError(name string, cause error) error {
	return wrapKindError(cause, ErrCodeRender, ErrMsgRenderFailed, name)
}

// wrapKindError wraps an engine error with its kind, position and tag as metadata
func wrapKindError(cause error, code, msg, name string) error {
	if customErr, ok := cause.(*cuserr.CustomError); ok {
		return customErr
	}
	err := cuserr.WrapStdError(cause, code, msg).
		WithMetadata(MetaKeyKind, internal.KindOf(cause).String())
	if name != "" {
		err = err.WithMetadata(MetaKeyTemplate, name)
	}
	var typed *internal.Error
	if errors.As(cause, &typed) {
		if typed.Position.Line > 0 {
			err = err.
				WithMetadata(MetaKeyLine, strconv.Itoa(typed.Position.Line)).
				WithMetadata(MetaKeyColumn, strconv.Itoa(typed.Position.Column))
		}
		if typed.Tag != "" {
			err = err.WithMetadata(MetaKeyTag, typed.Tag)
		}
	}
	return err
}

// NewTemplateNotFoundError creates an error for an unknown template name
func NewTemplateNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeLoader, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplate, name)
}

// NewEmptyTemplateNameError creates an error for an empty template name
func NewEmptyTemplateNameError() error {
	return cuserr.NewValidationError(ErrCodeLoader, ErrMsgEmptyTemplateName)
}

// NewInvalidTemplateNameError creates an error for a name that escapes a loader root
func NewInvalidTemplateNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeLoader, ErrMsgInvalidTemplateName).
		WithMetadata(MetaKeyTemplate, name)
}

// NewLoaderError wraps a loader failure other than not-found
func NewLoaderError(loader, name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeLoader, ErrMsgLoaderFailed).
		WithMetadata(MetaKeyLoader, loader).
		WithMetadata(MetaKeyTemplate, name)
}

// NewRegistryError wraps a library registration failure
func NewRegistryError(library string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRegistry, ErrMsgRegistryFailed).
		WithMetadata(MetaKeyLibrary, library)
}

// NewConfigError creates a configuration error
func NewConfigError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	if path != "" {
		err = err.WithMetadata(MetaKeyPath, path)
	}
	return err
}
