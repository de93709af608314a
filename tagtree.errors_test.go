package tagtree

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParseError_Metadata(t *testing.T) {
	engine := MustNew()
	_, err := engine.ParseNamed("page.html", "line one\n  {% block %}{% endblock %}")
	require.Error(t, err)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))

	tests := []struct {
		key      string
		expected string
	}{
		{MetaKeyKind, "TagSyntaxError"},
		{MetaKeyTemplate, "page.html"},
		{MetaKeyLine, "2"},
		{MetaKeyColumn, "3"},
		{MetaKeyTag, "block"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := customErr.GetMetadata(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
	assert.Equal(t, TagSyntaxError, KindOf(err))
}

func TestNewRenderError_KeepsCustomErrors(t *testing.T) {
	inner := NewTemplateNotFoundError("x")
	assert.Same(t, inner, NewRenderError("y", inner))
	assert.ErrorIs(t, inner, ErrTemplateNotFound)
}

func TestKindOf_PlainErrors(t *testing.T) {
	assert.Equal(t, NoError, KindOf(nil))
	assert.Equal(t, RenderError, KindOf(errors.New("plain")))
	assert.Equal(t, RenderError, KindOf(NewLoaderError(LoaderNameMemory, "x", errors.New("io"))))
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		key  string
		want string
	}{
		{"not found", NewTemplateNotFoundError("a.html"), MetaKeyTemplate, "a.html"},
		{"invalid name", NewInvalidTemplateNameError("../a"), MetaKeyTemplate, "../a"},
		{"loader", NewLoaderError(LoaderNamePostgres, "a", errors.New("io")), MetaKeyLoader, LoaderNamePostgres},
		{"registry", NewRegistryError("lib", errors.New("dup")), MetaKeyLibrary, "lib"},
		{"config", NewConfigError(ErrMsgConfigRead, "/etc/x.yaml", errors.New("io")), MetaKeyPath, "/etc/x.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))
			v, ok := customErr.GetMetadata(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	assert.Error(t, NewEmptyTemplateNameError())
	assert.Error(t, NewConfigError(ErrMsgConfigFormat, "", nil))
}
