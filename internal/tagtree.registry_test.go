package internal

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider serves a fixed set of libraries and counts lookups
type stubProvider struct {
	libs  map[string]*Library
	err   error
	calls int
}

func (s *stubProvider) ProvideLibrary(name string) (*Library, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	lib, ok := s.libs[name]
	return lib, ok, nil
}

func noopTag() TagFactory {
	return SimpleTag("noop", func(context.Context, []string, *Context) (string, error) {
		return "", nil
	})
}

func TestRegistry_RegisterTag(t *testing.T) {
	t.Run("first come wins", func(t *testing.T) {
		r := NewRegistry(nil)
		require.NoError(t, r.RegisterTag("x", noopTag()))

		err := r.RegisterTag("x", noopTag())
		var regErr *RegistryError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, ErrMsgTagAlreadyExists, regErr.Message)
		assert.Equal(t, "x", regErr.Name)
		assert.True(t, r.HasTag("x"))
	})

	t.Run("nil factory", func(t *testing.T) {
		r := NewRegistry(nil)
		assert.Error(t, r.RegisterTag("x", nil))
		assert.False(t, r.HasTag("x"))
	})

	t.Run("empty name", func(t *testing.T) {
		r := NewRegistry(nil)
		assert.Error(t, r.RegisterTag("", noopTag()))
	})

	t.Run("must register panics on duplicate", func(t *testing.T) {
		r := NewRegistry(nil)
		RegisterBuiltins(r)
		assert.Panics(t, func() { r.MustRegisterTag(TagNameBlock, noopTag()) })
	})
}

func TestRegistry_Libraries(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterLibrary(&Library{Name: "zeta"}))
	require.NoError(t, r.RegisterLibrary(&Library{Name: "alpha"}))

	assert.Error(t, r.RegisterLibrary(&Library{Name: "alpha"}))
	assert.Error(t, r.RegisterLibrary(nil))
	assert.Error(t, r.RegisterLibrary(&Library{}))
	assert.Equal(t, []string{"alpha", "zeta"}, r.Libraries())
}

func TestRegistry_LoadLibrary(t *testing.T) {
	registered := &Library{Name: "shared"}
	fromProvider := &Library{Name: "shared"}
	other := &Library{Name: "other"}

	first := &stubProvider{libs: map[string]*Library{"shared": fromProvider}}
	second := &stubProvider{libs: map[string]*Library{"other": other}}

	r := NewRegistry(nil)
	require.NoError(t, r.RegisterLibrary(registered))
	require.NoError(t, r.RegisterProvider(first))
	require.NoError(t, r.RegisterProvider(second))
	assert.Error(t, r.RegisterProvider(nil))

	t.Run("registered libraries come first", func(t *testing.T) {
		lib, found, err := r.LoadLibrary("shared")
		require.NoError(t, err)
		require.True(t, found)
		assert.Same(t, registered, lib)
		assert.Equal(t, 0, first.calls)
	})

	t.Run("providers in order", func(t *testing.T) {
		lib, found, err := r.LoadLibrary("other")
		require.NoError(t, err)
		require.True(t, found)
		assert.Same(t, other, lib)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})

	t.Run("unknown", func(t *testing.T) {
		_, found, err := r.LoadLibrary("nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("provider error", func(t *testing.T) {
		r := NewRegistry(nil)
		require.NoError(t, r.RegisterProvider(&stubProvider{err: errors.New("broken")}))
		_, _, err := r.LoadLibrary("x")
		assert.Error(t, err)
	})
}

func TestRegistry_BuiltinsAreCopies(t *testing.T) {
	r := NewRegistry(nil)
	RegisterBuiltins(r)

	tags, filters := r.Builtins()
	assert.Contains(t, tags, TagNameFirstOf)
	assert.Contains(t, tags, TagNameExtends)
	assert.Contains(t, filters, FilterNameUpper)

	delete(tags, TagNameFirstOf)
	filters["extra"] = &Filter{Name: "extra"}

	tags2, filters2 := r.Builtins()
	assert.Contains(t, tags2, TagNameFirstOf)
	assert.NotContains(t, filters2, "extra")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry(nil)
	RegisterBuiltins(r)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = r.RegisterLibrary(&Library{Name: "lib"})
				return
			}
			_, err := ParseTemplate("", "{% firstof a %}", r, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, []string{"lib"}, r.Libraries())
}
