package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.uber.org/zap"
)

// Script library constants
const (
	ScriptExt           = ".star"
	ScriptGlobalTags    = "tags"
	ScriptGlobalFilters = "filters"
	ScriptBuiltinVar    = "var"
	scriptLocalContext  = "tagtree.context"
)

// Script library error messages
const (
	ErrMsgScriptExec       = "tag library script failed"
	ErrMsgScriptBadExport  = "tag library script export must be a dict of name to function"
	ErrMsgScriptCallFailed = "script tag call failed"
	ErrMsgScriptNoContext  = "var() called outside a render"
	ErrMsgScriptConvert    = "value cannot be converted for a script"
)

// ScriptProvider discovers tag libraries written in Starlark. {% load name %}
// resolves to the first <dir>/<name>.star found in the configured directories.
// A script exports a tags dict and optionally a filters dict:
//
//	def echo(*args):
//	    return " ".join(args)
//
//	tags = {"echo": echo}
//
// Tag functions receive the tag arguments as strings. var(path) reads the
// render context. Compiled libraries are cached for the provider's lifetime.
type ScriptProvider struct {
	dirs   []string
	cache  map[string]*Library
	mu     sync.Mutex
	logger *zap.Logger
}

// NewScriptProvider creates a provider searching dirs in order
func NewScriptProvider(dirs []string, logger *zap.Logger) *ScriptProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptProvider{
		dirs:   dirs,
		cache:  make(map[string]*Library),
		logger: logger,
	}
}

// ProvideLibrary implements LibraryProvider
func (s *ScriptProvider) ProvideLibrary(name string) (*Library, bool, error) {
	if name == StringValueEmpty || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lib, ok := s.cache[name]; ok {
		return lib, true, nil
	}

	for _, dir := range s.dirs {
		path := filepath.Join(dir, name+ScriptExt)
		src, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		lib, err := CompileScriptLibrary(name, path, src)
		if err != nil {
			return nil, false, err
		}
		s.cache[name] = lib
		s.logger.Debug(LogMsgScriptLibraryLoaded,
			zap.String(LogFieldLibrary, name),
			zap.String(LogFieldPath, path),
			zap.Int(LogFieldTagCount, len(lib.Tags)),
		)
		return lib, true, nil
	}
	return nil, false, nil
}

// CompileScriptLibrary executes a Starlark script and wraps its exports as a library
func CompileScriptLibrary(name, filename string, src any) (*Library, error) {
	thread := &starlark.Thread{Name: name}
	predeclared := starlark.StringDict{
		ScriptBuiltinVar: starlark.NewBuiltin(ScriptBuiltinVar, scriptVar),
	}
	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrMsgScriptExec, filename, err)
	}
	globals.Freeze()

	lib := &Library{
		Name:    name,
		Tags:    make(map[string]TagFactory),
		Filters: make(map[string]*Filter),
	}
	tags, err := scriptExports(globals, ScriptGlobalTags)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	for tagName, fn := range tags {
		lib.Tags[tagName] = scriptTag(tagName, fn)
	}
	filters, err := scriptExports(globals, ScriptGlobalFilters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	for filterName, fn := range filters {
		lib.Filters[filterName] = scriptFilter(filterName, fn)
	}
	return lib, nil
}

// scriptExports reads a dict of name to callable from the script globals
func scriptExports(globals starlark.StringDict, key string) (map[string]starlark.Callable, error) {
	v, ok := globals[key]
	if !ok {
		return nil, nil
	}
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, errors.New(ErrMsgScriptBadExport)
	}
	out := make(map[string]starlark.Callable, dict.Len())
	for _, item := range dict.Items() {
		name, ok := starlark.AsString(item[0])
		if !ok {
			return nil, errors.New(ErrMsgScriptBadExport)
		}
		fn, ok := item[1].(starlark.Callable)
		if !ok {
			return nil, errors.New(ErrMsgScriptBadExport)
		}
		out[name] = fn
	}
	return out, nil
}

// scriptVar implements var(path) against the render context of the calling thread
func scriptVar(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	if err := starlark.UnpackPositionalArgs(ScriptBuiltinVar, args, kwargs, 1, &path); err != nil {
		return nil, err
	}
	c, ok := thread.Local(scriptLocalContext).(*Context)
	if !ok {
		return nil, errors.New(ErrMsgScriptNoContext)
	}
	v, _, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	return ToStarlark(v)
}

// scriptTag wraps a Starlark function as a simple tag. The render context
// is reachable from the script through var().
func scriptTag(name string, fn starlark.Callable) TagFactory {
	return SimpleTag(name, func(_ context.Context, args []string, c *Context) (string, error) {
		thread := &starlark.Thread{Name: name}
		thread.SetLocal(scriptLocalContext, c)

		callArgs := make(starlark.Tuple, len(args))
		for i, a := range args {
			callArgs[i] = starlark.String(a)
		}
		v, err := starlark.Call(thread, fn, callArgs, nil)
		if err != nil {
			return StringValueEmpty, fmt.Errorf("%s: %w", ErrMsgScriptCallFailed, err)
		}
		if s, ok := starlark.AsString(v); ok {
			return s, nil
		}
		return Stringify(FromStarlark(v)), nil
	})
}

func scriptFilter(name string, fn starlark.Callable) *Filter {
	return &Filter{
		Name:    name,
		ArgMode: FilterArgOptional,
		Fn: func(in, arg any) (any, error) {
			thread := &starlark.Thread{Name: name}
			input, err := ToStarlark(in)
			if err != nil {
				return nil, err
			}
			args := starlark.Tuple{input}
			if arg != nil {
				sv, err := ToStarlark(arg)
				if err != nil {
					return nil, err
				}
				args = append(args, sv)
			}
			v, err := starlark.Call(thread, fn, args, nil)
			if err != nil {
				return nil, err
			}
			return FromStarlark(v), nil
		},
	}
}

// ToStarlark converts a render value to a Starlark value
func ToStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return val, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case []any:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := ToStarlark(item)
			if err != nil {
				return nil, err
			}
			items[i] = sv
		}
		return starlark.NewList(items), nil
	case []string:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			items[i] = starlark.String(item)
		}
		return starlark.NewList(items), nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, item := range val {
			sv, err := ToStarlark(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("%s '%s': %w", ErrMsgScriptConvert, k, err)
			}
		}
		return dict, nil
	default:
		return starlark.String(Stringify(v)), nil
	}
}

// FromStarlark converts a Starlark value to a render value
func FromStarlark(v starlark.Value) any {
	switch val := v.(type) {
	case nil, starlark.NoneType:
		return nil
	case starlark.String:
		return string(val)
	case starlark.Bool:
		return bool(val)
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i
		}
		return val.String()
	case starlark.Float:
		return float64(val)
	case *starlark.List:
		items := make([]any, val.Len())
		for i := range items {
			items[i] = FromStarlark(val.Index(i))
		}
		return items
	case starlark.Tuple:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = FromStarlark(item)
		}
		return items
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				key = item[0].String()
			}
			out[key] = FromStarlark(item[1])
		}
		return out
	default:
		return val.String()
	}
}
