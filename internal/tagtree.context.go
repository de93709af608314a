package internal

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Attributer exposes named attributes to dotted variable lookups.
// found=false means the attribute does not exist and resolves as missing.
type Attributer interface {
	Attribute(name string) (value any, found bool, err error)
}

// renderState is per-template render bookkeeping. Included templates get a
// fresh state so block resolution never leaks across an include boundary.
type renderState struct {
	blocks *BlockContext
}

// Context is the variable-lookup environment for one render request.
// It is a stack of scopes searched innermost first and is not safe for
// concurrent use; every render gets its own instance.
type Context struct {
	scopes []map[string]any
	states []*renderState
	env    Environment
	depth  int
	logger *zap.Logger
}

// NewContext creates a context whose outermost scope is data
func NewContext(data map[string]any, env Environment, logger *zap.Logger) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		scopes: []map[string]any{data},
		states: []*renderState{{}},
		env:    env,
		logger: logger,
	}
}

// Environment returns the template environment, which may be nil
func (c *Context) Environment() Environment {
	return c.env
}

// Logger returns the render logger
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Push opens a new innermost scope
func (c *Context) Push(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	c.scopes = append(c.scopes, data)
}

// Pop removes the innermost scope. The outermost scope is never removed.
func (c *Context) Pop() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// Set binds name in the innermost scope
func (c *Context) Set(name string, value any) {
	c.scopes[len(c.scopes)-1][name] = value
}

// Lookup finds name in the innermost scope that defines it
func (c *Context) Lookup(name string) (any, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve walks a dotted path. The first segment is looked up in scope,
// later segments index maps, slices and Attributer values.
func (c *Context) Resolve(path string) (any, bool, error) {
	parts := strings.Split(path, string(CharDot))
	current, ok := c.Lookup(parts[0])
	if !ok {
		return nil, false, nil
	}
	for _, part := range parts[1:] {
		next, found, err := attribute(current, part)
		if err != nil || !found {
			return nil, false, err
		}
		current = next
	}
	return current, true, nil
}

// blockContext returns the block resolution state of the current template render
func (c *Context) blockContext() *BlockContext {
	return c.states[len(c.states)-1].blocks
}

// pushState starts an isolated render state
func (c *Context) pushState(blocks *BlockContext) {
	c.states = append(c.states, &renderState{blocks: blocks})
}

// popState ends the current render state
func (c *Context) popState() {
	if len(c.states) > 1 {
		c.states = c.states[:len(c.states)-1]
	}
}

// attribute resolves one path segment against value
func attribute(value any, name string) (any, bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, false, nil
	case Attributer:
		return v.Attribute(name)
	case map[string]any:
		val, ok := v[name]
		return val, ok, nil
	case map[string]string:
		val, ok := v[name]
		return val, ok, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, nil
		}
		val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false, nil
		}
		return val.Interface(), true, nil
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false, nil
		}
		return rv.Index(idx).Interface(), true, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false, nil
		}
		return attribute(rv.Elem().Interface(), name)
	case reflect.Struct:
		field := rv.FieldByName(name)
		if !field.IsValid() || !field.CanInterface() {
			return nil, false, nil
		}
		return field.Interface(), true, nil
	}
	return nil, false, nil
}

// Truthy coerces a value to a boolean. nil, false, "", numeric zero and
// empty collections are falsy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return len(val) > 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Stringify converts a value to its rendered string form
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return val
	case bool:
		if val {
			return StringValueTrue
		}
		return StringValueFalse
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}
	return fmt.Sprint(v)
}
