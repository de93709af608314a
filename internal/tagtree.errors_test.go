package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Names(t *testing.T) {
	for k := NoError; k <= RenderError; k++ {
		parsed, ok := ParseErrorKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseErrorKind("NotAKind")
	assert.False(t, ok)
	assert.Equal(t, "TagSyntaxError", TagSyntaxError.String())
	assert.Equal(t, "UnclosedBlockTagError", UnclosedBlockTagError.String())
}

func TestError_Message(t *testing.T) {
	pos := Position{Line: 3, Column: 7}

	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"message only", NewError(TagSyntaxError, "bad", "", Position{}), "bad"},
		{"with tag", NewError(TagSyntaxError, "bad", "block", Position{}), "block: bad"},
		{"with position", NewError(TagSyntaxError, "bad", "", pos), "bad at line 3, column 7"},
		{"with cause", NewErrorWithCause(RenderError, "bad", "include", pos, errors.New("io")), "include: bad at line 3, column 7: io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	typed := NewError(UnknownFilterError, "x", "", Position{})

	assert.Equal(t, NoError, KindOf(nil))
	assert.Equal(t, UnknownFilterError, KindOf(typed))
	assert.Equal(t, UnknownFilterError, KindOf(fmt.Errorf("wrapped: %w", typed)))
	assert.Equal(t, RenderError, KindOf(errors.New("plain")))

	_, ok := PositionOf(errors.New("plain"))
	assert.False(t, ok)
}
