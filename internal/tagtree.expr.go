package internal

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// FilterArgMode declares whether a filter takes an argument
type FilterArgMode int

// Filter argument modes
const (
	FilterArgNone FilterArgMode = iota
	FilterArgOptional
	FilterArgRequired
)

// Filter transforms a resolved value. arg is nil when no argument was given.
type Filter struct {
	Name    string
	ArgMode FilterArgMode
	Fn      func(input any, arg any) (any, error)
}

// operand is a literal or a variable path
type operand struct {
	literal any
	path    string
	isVar   bool
}

// resolve evaluates the operand. Missing variables resolve to nil.
func (o operand) resolve(c *Context) (any, error) {
	if !o.isVar {
		return o.literal, nil
	}
	v, _, err := c.Resolve(o.path)
	return v, err
}

// appliedFilter is one link of a filter chain
type appliedFilter struct {
	filter *Filter
	arg    *operand
}

// FilterExpression is an immutable variable-or-literal with an optional
// filter chain. It is compiled at parse time and evaluated at render time.
type FilterExpression struct {
	raw     string
	base    operand
	filters []appliedFilter
	pos     Position
}

// CompileFilterExpression parses expr against the filters visible to the current parse
func CompileFilterExpression(expr string, filters map[string]*Filter, pos Position) (*FilterExpression, error) {
	parts, err := splitOutsideQuotes(expr, CharPipe)
	if err != nil {
		return nil, NewErrorWithCause(TagSyntaxError, ErrMsgInvalidExpression, StringValueEmpty, pos, err)
	}
	base, err := parseOperand(strings.TrimSpace(parts[0]), pos)
	if err != nil {
		return nil, err
	}
	fe := &FilterExpression{raw: expr, base: base, pos: pos}

	for _, part := range parts[1:] {
		nameAndArg, err := splitOutsideQuotes(strings.TrimSpace(part), CharColon)
		if err != nil {
			return nil, NewErrorWithCause(TagSyntaxError, ErrMsgInvalidExpression, StringValueEmpty, pos, err)
		}
		name := strings.TrimSpace(nameAndArg[0])
		f, ok := filters[name]
		if !ok {
			return nil, NewError(UnknownFilterError, ErrMsgUnknownFilter+" '"+name+"'", StringValueEmpty, pos)
		}
		applied := appliedFilter{filter: f}
		if len(nameAndArg) > 1 {
			if f.ArgMode == FilterArgNone {
				return nil, NewError(TagSyntaxError, ErrMsgFilterArgUnexpected, name, pos)
			}
			arg, err := parseOperand(strings.TrimSpace(strings.Join(nameAndArg[1:], string(CharColon))), pos)
			if err != nil {
				return nil, err
			}
			applied.arg = &arg
		} else if f.ArgMode == FilterArgRequired {
			return nil, NewError(TagSyntaxError, ErrMsgFilterArgMissing, name, pos)
		}
		fe.filters = append(fe.filters, applied)
	}
	return fe, nil
}

// String returns the source text of the expression
func (fe *FilterExpression) String() string {
	return fe.raw
}

// IsLiteral reports whether the base of the expression is a literal
func (fe *FilterExpression) IsLiteral() bool {
	return !fe.base.isVar
}

// Resolve evaluates the expression against c
func (fe *FilterExpression) Resolve(ctx context.Context, c *Context) (any, error) {
	v, err := fe.base.resolve(c)
	if err != nil {
		return nil, NewErrorWithCause(RenderError, ErrMsgInvalidExpression, StringValueEmpty, fe.pos, err)
	}
	for _, applied := range fe.filters {
		var arg any
		if applied.arg != nil {
			if arg, err = applied.arg.resolve(c); err != nil {
				return nil, NewErrorWithCause(RenderError, ErrMsgInvalidExpression, StringValueEmpty, fe.pos, err)
			}
		}
		if v, err = applied.filter.Fn(v, arg); err != nil {
			return nil, NewErrorWithCause(RenderError, ErrMsgFilterFailed, applied.filter.Name, fe.pos, err)
		}
	}
	return v, nil
}

// parseOperand parses a quoted string, number or variable path
func parseOperand(s string, pos Position) (operand, error) {
	if s == StringValueEmpty {
		return operand{}, NewError(TagSyntaxError, ErrMsgInvalidExpression, StringValueEmpty, pos)
	}
	if q := s[0]; q == CharDoubleQuote || q == CharSingleQuote {
		if len(s) < 2 || s[len(s)-1] != q {
			return operand{}, NewError(TagSyntaxError, ErrMsgUnterminatedString, StringValueEmpty, pos)
		}
		return operand{literal: s[1 : len(s)-1]}, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return operand{literal: i}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return operand{literal: f}, nil
	}
	if !isVariablePath(s) {
		return operand{}, NewError(TagSyntaxError, ErrMsgInvalidExpression+" '"+s+"'", StringValueEmpty, pos)
	}
	return operand{path: s, isVar: true}, nil
}

// isVariablePath reports whether s is a dotted identifier path
func isVariablePath(s string) bool {
	for _, seg := range strings.Split(s, string(CharDot)) {
		if seg == StringValueEmpty {
			return false
		}
		for _, r := range seg {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return false
			}
		}
	}
	return true
}

// splitOutsideQuotes splits s on sep, ignoring separators inside quotes
func splitOutsideQuotes(s string, sep byte) ([]string, error) {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == CharDoubleQuote || ch == CharSingleQuote:
			quote = ch
		case ch == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%s in %q", ErrMsgUnterminatedString, s)
	}
	return append(parts, s[start:]), nil
}

// SmartSplit splits tag content on whitespace, keeping quoted strings intact
func SmartSplit(content string) []string {
	var bits []string
	var sb strings.Builder
	var quote rune
	for _, r := range content {
		switch {
		case quote != 0:
			sb.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == CharDoubleQuote || r == CharSingleQuote:
			quote = r
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			if sb.Len() > 0 {
				bits = append(bits, sb.String())
				sb.Reset()
			}
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() > 0 {
		bits = append(bits, sb.String())
	}
	return bits
}

// BuiltinFilters returns the filters visible to every parse
func BuiltinFilters() map[string]*Filter {
	filters := []*Filter{
		{Name: FilterNameUpper, Fn: func(in, _ any) (any, error) {
			return strings.ToUpper(Stringify(in)), nil
		}},
		{Name: FilterNameLower, Fn: func(in, _ any) (any, error) {
			return strings.ToLower(Stringify(in)), nil
		}},
		{Name: FilterNameDefault, ArgMode: FilterArgRequired, Fn: func(in, arg any) (any, error) {
			if Truthy(in) {
				return in, nil
			}
			return arg, nil
		}},
		{Name: FilterNameLength, Fn: filterLength},
		{Name: FilterNameJoin, ArgMode: FilterArgOptional, Fn: filterJoin},
	}
	out := make(map[string]*Filter, len(filters))
	for _, f := range filters {
		out[f.Name] = f
	}
	return out
}

func filterLength(in, _ any) (any, error) {
	if in == nil {
		return 0, nil
	}
	if s, ok := in.(string); ok {
		return len([]rune(s)), nil
	}
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return 0, nil
}

func filterJoin(in, arg any) (any, error) {
	sep := DefaultJoinSeparator
	if arg != nil {
		sep = Stringify(arg)
	}
	rv := reflect.ValueOf(in)
	if in == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return Stringify(in), nil
	}
	items := make([]string, rv.Len())
	for i := range items {
		items[i] = Stringify(rv.Index(i).Interface())
	}
	return strings.Join(items, sep), nil
}
